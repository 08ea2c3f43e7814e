package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// MedicineHandler handles inventory requests.
type MedicineHandler struct {
	Medicines *services.MedicineService
	Log       *logrus.Entry
}

// NewMedicineHandler creates a new MedicineHandler.
func NewMedicineHandler(medicines *services.MedicineService, log *logrus.Entry) *MedicineHandler {
	return &MedicineHandler{Medicines: medicines, Log: log}
}

// CreateMedicineRequest represents the request body for adding a medicine.
type CreateMedicineRequest struct {
	Name            string           `json:"name" binding:"required,max=150"`
	Brand           string           `json:"brand" binding:"max=100"`
	Description     string           `json:"description"`
	UnitPrice       *decimal.Decimal `json:"unitPrice" binding:"required"`
	QuantityInStock int              `json:"quantityInStock"`
	ReorderLevel    int              `json:"reorderLevel" binding:"min=0"`
}

// CreateMedicine adds a medicine to the inventory.
func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req CreateMedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	medicine := models.Medicine{
		Name:            req.Name,
		Brand:           req.Brand,
		Description:     req.Description,
		UnitPrice:       *req.UnitPrice,
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    req.ReorderLevel,
	}
	if err := h.Medicines.Create(c.Request.Context(), &medicine); err != nil {
		respondError(c, h.Log, err, "create medicine")
		return
	}
	utils.Created(c, "Medicine created successfully", medicine)
}

// GetMedicines lists active medicines by name.
func (h *MedicineHandler) GetMedicines(c *gin.Context) {
	medicines, err := h.Medicines.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "retrieve medicines")
		return
	}
	utils.Success(c, "Medicines retrieved successfully", medicines)
}

// GetLowStockMedicines lists active medicines at or below their reorder level.
func (h *MedicineHandler) GetLowStockMedicines(c *gin.Context) {
	medicines, err := h.Medicines.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "retrieve medicines")
		return
	}
	utils.Success(c, "Low stock medicines retrieved successfully", medicines)
}

// GetMedicine returns one medicine.
func (h *MedicineHandler) GetMedicine(c *gin.Context) {
	id, ok := pathID(c, "id", "medicine")
	if !ok {
		return
	}
	medicine, err := h.Medicines.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err, "retrieve medicine")
		return
	}
	utils.Success(c, "Medicine retrieved successfully", medicine)
}

// UpdateMedicineRequest represents the editable medicine fields. Omitted
// fields are left unchanged.
type UpdateMedicineRequest struct {
	Name            *string          `json:"name" binding:"omitempty,max=150"`
	Brand           *string          `json:"brand" binding:"omitempty,max=100"`
	Description     *string          `json:"description"`
	UnitPrice       *decimal.Decimal `json:"unitPrice"`
	QuantityInStock *int             `json:"quantityInStock"`
	ReorderLevel    *int             `json:"reorderLevel" binding:"omitempty,min=0"`
	IsActive        *bool            `json:"isActive"`
}

// UpdateMedicine edits a medicine, including restocking it.
func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	id, ok := pathID(c, "id", "medicine")
	if !ok {
		return
	}
	var req UpdateMedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	medicine, err := h.Medicines.Update(c.Request.Context(), id, services.MedicineUpdate{
		Name:            req.Name,
		Brand:           req.Brand,
		Description:     req.Description,
		UnitPrice:       req.UnitPrice,
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    req.ReorderLevel,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondError(c, h.Log, err, "update medicine")
		return
	}
	utils.Success(c, "Medicine updated successfully", medicine)
}

// DeleteMedicine deactivates a medicine; the row is kept for past prescriptions.
func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	id, ok := pathID(c, "id", "medicine")
	if !ok {
		return
	}
	if err := h.Medicines.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err, "deactivate medicine")
		return
	}
	utils.Success(c, "Medicine deactivated successfully", nil)
}

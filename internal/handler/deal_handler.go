package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/middleware"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/repository"
)

// DealHandler lets buyers make offers on approved listings and see their
// own deals. The deal lifecycle past creation lives outside this service.
type DealHandler struct {
	Repo        *repository.DealRepository
	ListingRepo *repository.ListingRepository
}

func (h *DealHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/deals", middleware.RequireRole(model.RoleBuyer), h.CreateDeal)
	rg.GET("/my/deals", h.GetMyDeals)
}

type CreateDealDTO struct {
	ListingID    string  `json:"listingId" binding:"required"`
	OfferedPrice float64 `json:"offeredPrice" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
}

// POST /api/deals
func (h *DealHandler) CreateDeal(c *gin.Context) {
	var req CreateDealDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.OfferedPrice <= 0 || req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price and quantity must be positive"})
		return
	}

	listing, err := h.ListingRepo.GetByID(c.Request.Context(), req.ListingID)
	if err != nil {
		writeError(c, err)
		return
	}
	if listing.Status != model.StatusApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "offers are only accepted on approved listings"})
		return
	}
	buyerID := middleware.UserID(c)
	if listing.FarmerID == buyerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot make an offer on your own listing"})
		return
	}

	now := time.Now().UTC()
	deal := &model.Deal{
		ID:           ulid.Make().String(),
		BuyerID:      buyerID,
		FarmerID:     listing.FarmerID,
		ListingID:    listing.ID,
		OfferedPrice: req.OfferedPrice,
		Quantity:     req.Quantity,
		TotalAmount:  req.OfferedPrice * req.Quantity,
		Status:       model.DealPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Repo.Create(c.Request.Context(), deal); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

// GET /api/my/deals
func (h *DealHandler) GetMyDeals(c *gin.Context) {
	deals, err := h.Repo.ListByBuyer(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if deals == nil {
		deals = []model.Deal{}
	}
	c.JSON(http.StatusOK, deals)
}

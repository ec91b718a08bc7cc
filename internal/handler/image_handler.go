package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/middleware"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/repository"
)

// ImageHandler uploads crop photos to GridFS and appends the serving URL
// to the listing's image list.
type ImageHandler struct {
	Repo        *repository.ImageRepository
	ListingRepo *repository.ListingRepository
}

func (h *ImageHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/listings/:id/images", h.UploadImage)
}

func (h *ImageHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/images/:imageId", h.DownloadImage)
}

// POST /api/listings/:id/images
func (h *ImageHandler) UploadImage(c *gin.Context) {
	listingID := c.Param("id")
	listing, err := h.ListingRepo.GetByID(c.Request.Context(), listingID)
	if err != nil {
		writeError(c, err)
		return
	}
	if listing.FarmerID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("listing_%s_%s", listingID, fileHeader.Filename)
	imageID, err := h.Repo.UploadImage(file, filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	url := fmt.Sprintf("/api/images/%s", imageID)
	if err := h.ListingRepo.AppendImage(c.Request.Context(), listingID, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update listing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_id": imageID, "url": url})
}

// GET /api/images/:imageId
func (h *ImageHandler) DownloadImage(c *gin.Context) {
	data, err := h.Repo.DownloadImage(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

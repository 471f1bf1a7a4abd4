package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
)

// AssetHandler serves the overlay asset catalog: public listing for
// kiosks plus the admin CRUD surface.
type AssetHandler struct {
	Assets *repository.AssetRepo
}

func NewAssetHandler(a *repository.AssetRepo) *AssetHandler {
	return &AssetHandler{Assets: a}
}

// List returns a page of assets, optionally filtered by ?type.
func (h *AssetHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)

	typ := model.AssetType(strings.ToLower(strings.TrimSpace(c.QueryParam("type"))))
	if typ != "" && !model.ValidAssetType(typ) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid asset type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	assets, total, err := h.Assets.List(ctx, typ, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pageEnvelope(assets, total, page, limit))
}

// Get returns one asset.
func (h *AssetHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Assets.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

type assetReq struct {
	Type       string   `json:"type"`
	ImageURL   string   `json:"imageUrl"`
	PublicID   string   `json:"publicId"`
	FilterType *string  `json:"filterType"`
	Scale      *float64 `json:"scale"`
	OffsetY    *float64 `json:"offsetY"`
	AnchorIdx  *int     `json:"anchorIdx"`
	LeftIdx    *int     `json:"leftIdx"`
	RightIdx   *int     `json:"rightIdx"`
}

func (r *assetReq) toModel() model.Asset {
	return model.Asset{
		Type:       model.AssetType(strings.ToLower(strings.TrimSpace(r.Type))),
		ImageURL:   r.ImageURL,
		PublicID:   r.PublicID,
		FilterType: r.FilterType,
		Scale:      r.Scale,
		OffsetY:    r.OffsetY,
		AnchorIdx:  r.AnchorIdx,
		LeftIdx:    r.LeftIdx,
		RightIdx:   r.RightIdx,
	}
}

// validateAsset enforces the tagged shape: layout fields belong to
// filters and only to filters.
func validateAsset(a *model.Asset) string {
	if !model.ValidAssetType(a.Type) {
		return "invalid asset type"
	}
	if a.ImageURL == "" {
		return "imageUrl required"
	}
	if a.PublicID == "" {
		return "publicId required"
	}
	if a.Type != model.AssetFilter && a.HasLayout() {
		return "layout fields are only valid for filter assets"
	}
	return ""
}

// Create adds an asset (admin).
func (h *AssetHandler) Create(c echo.Context) error {
	var req assetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	a := req.toModel()
	if msg := validateAsset(&a); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Assets.Create(ctx, &a)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces an asset's mutable fields (admin).  The type is
// fixed at creation.
func (h *AssetHandler) Update(c echo.Context) error {
	var req assetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Assets.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}

	a := req.toModel()
	a.ID = existing.ID
	a.Type = existing.Type
	if msg := validateAsset(&a); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	updated, err := h.Assets.Update(ctx, &a)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes an asset (admin).
func (h *AssetHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Assets.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

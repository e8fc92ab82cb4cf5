package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The master-data handlers are read-only lookups for form population.

// ListLocations handles GET /api/masterdata/locations
func (h *Handlers) ListLocations(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.Locations(c.Request.Context())
	})
}

// ListCityCategories handles GET /api/masterdata/city-categories
func (h *Handlers) ListCityCategories(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.CityCategories(c.Request.Context())
	})
}

// ListTravelModes handles GET /api/masterdata/travel-modes
func (h *Handlers) ListTravelModes(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.TravelModes(c.Request.Context())
	})
}

// ListGLCodes handles GET /api/masterdata/gl-codes
func (h *Handlers) ListGLCodes(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.GLCodes(c.Request.Context())
	})
}

// ListGrades handles GET /api/masterdata/grades
func (h *Handlers) ListGrades(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.Grades(c.Request.Context())
	})
}

// ListGuestHouses handles GET /api/masterdata/guest-houses
func (h *Handlers) ListGuestHouses(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.GuestHouses(c.Request.Context())
	})
}

// ListExpenseTypes handles GET /api/masterdata/expense-types
func (h *Handlers) ListExpenseTypes(c *gin.Context) {
	h.respondList(c, func() (interface{}, error) {
		return h.master.ExpenseTypes(c.Request.Context())
	})
}

func (h *Handlers) respondList(c *gin.Context, load func() (interface{}, error)) {
	data, err := load()
	if err != nil {
		h.logger.Error("Failed to load master data", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to load master data",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

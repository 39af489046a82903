package httpserver

import (
	"net/http"
	"strings"

	restaurantsvc "food-delivery/internal/service/restaurant"
	"github.com/gin-gonic/gin"
)

func (h *handlers) saveRestaurant(c *gin.Context) {
	var req restaurantsvc.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	r, err := h.deps.RestaurantSvc.Save(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Restaurant saved", "restaurant": r})
}

func (h *handlers) getOwnRestaurant(c *gin.Context) {
	r, err := h.deps.RestaurantSvc.GetOwn(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": r})
}

func (h *handlers) getRestaurant(c *gin.Context) {
	r, err := h.deps.RestaurantSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": r})
}

func (h *handlers) searchRestaurants(c *gin.Context) {
	var cuisines []string
	if raw := c.Query("selectedCuisines"); raw != "" {
		cuisines = strings.Split(raw, ",")
	}
	out, err := h.deps.RestaurantSvc.Search(c.Request.Context(), c.Param("searchText"), c.Query("searchQuery"), cuisines)
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

func (h *handlers) listRestaurantOrders(c *gin.Context) {
	orders, err := h.deps.RestaurantSvc.ListOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

func (h *handlers) addMenu(c *gin.Context) {
	var req restaurantsvc.MenuInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	m, err := h.deps.RestaurantSvc.AddMenu(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Menu added successfully", "menu": m})
}

func (h *handlers) updateMenu(c *gin.Context) {
	var req restaurantsvc.MenuInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	m, err := h.deps.RestaurantSvc.UpdateMenu(c.Request.Context(), currentUser(c).ID, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err, "Menu not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu updated", "menu": m})
}

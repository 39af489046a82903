package httpserver

import (
	"net/http"

	ordersvc "food-delivery/internal/service/order"
	"github.com/gin-gonic/gin"
)

// signatureHeader carries the gateway's webhook signature.
const signatureHeader = "Stripe-Signature"

func (h *handlers) createCheckoutSession(c *gin.Context) {
	var req ordersvc.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	session, err := h.deps.OrderSvc.CreateCheckoutSession(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, h.logger, err, "Restaurant not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// webhook must see the payload exactly as sent, so the body is read raw
// rather than bound.
func (h *handlers) webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, failure("unreadable body"))
		return
	}
	res, err := h.deps.OrderSvc.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		respondError(c, h.logger, err, "Order not found")
		return
	}
	if res.Confirmed {
		h.logger.Printf("webhook: order confirmed id=%s", res.OrderID)
	}
	c.Status(http.StatusOK)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err, "Orders not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

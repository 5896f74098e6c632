package payement

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"lumira_back_end/internal/checkout"
)

func orderRouter() *gin.Engine {
	Init(&checkout.Service{GatewaySecret: "autre-secret"})
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/orders", func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Set("email", "client@example.com")
	}, CreateOrder)
	return r
}

// Un total à zéro est légitime quand un coupon fixe couvre sous-total et
// livraison : la requête doit passer le binding et échouer plus loin
// (ici sur la signature), jamais sur "Données invalides".
func TestCreateOrderAcceptsZeroTotal(t *testing.T) {
	r := orderRouter()

	body := `{
		"items": [{"product_id": "p1", "name": "Affiche", "price": 100, "quantity": 1}],
		"shipping_address": {"full_name": "Claire Dupont", "street": "12 rue des Lilas", "city": "Lyon", "postal_code": "69003", "country": "France"},
		"payment_method": "full",
		"subtotal": 100,
		"shipping": 49,
		"discount": 149,
		"coupon_code": "TOUT",
		"total": 0,
		"razorpay_order_id": "order_x",
		"razorpay_payment_id": "pay_x",
		"razorpay_signature": "deadbeef"
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "Données invalides")
	assert.Contains(t, w.Body.String(), "Signature")
}

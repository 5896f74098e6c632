package payement

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func couponRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/coupons", CreateCoupon)
	return r
}

func postCoupon(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/coupons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// Les types connus sont "percentage" et "fixed" ; tout autre type est
// rejeté avant la moindre écriture.
func TestCreateCouponRejectsUnknownType(t *testing.T) {
	r := couponRouter()

	w := postCoupon(r, `{"code":"MYSTERE","type":"bogo","value":1,"expires_at":"2027-01-01T00:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Type de coupon invalide")
}

func TestCreateCouponRejectsPercentageOutOfRange(t *testing.T) {
	r := couponRouter()

	w := postCoupon(r, `{"code":"GENEREUX","type":"percentage","value":150,"expires_at":"2027-01-01T00:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Pourcentage")
}

func TestCreateCouponRejectsNegativeFixedAmount(t *testing.T) {
	r := couponRouter()

	w := postCoupon(r, `{"code":"NEGATIF","type":"fixed","value":-5,"expires_at":"2027-01-01T00:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "positif")
}

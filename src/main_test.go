package main

import (
	"bookstore/src/common"
	"bookstore/src/config"
	"bookstore/src/db"
	"bookstore/src/lib"
	"bookstore/src/models"
	"bookstore/src/types"
	"bookstore/src/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type scriptedGateway struct {
	mu      sync.Mutex
	replies map[string][]*lib.VerifyResponse
	calls   map[string]int
}

func (g *scriptedGateway) script(id string, replies ...*lib.VerifyResponse) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies[id] = replies
}

func (g *scriptedGateway) Calls(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[id]
}

// VerifyTransaction replays the script; a nil entry is a transport error.
func (g *scriptedGateway) VerifyTransaction(ctx context.Context, id string) (*lib.VerifyResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.calls[id]
	g.calls[id] = n + 1
	script := g.replies[id]
	if len(script) == 0 {
		return nil, errors.New("connection refused")
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	if script[n] == nil {
		return nil, errors.New("dial tcp: i/o timeout")
	}
	return script[n], nil
}

func gatewayReply(id string, status string, email string) *lib.VerifyResponse {
	res := &lib.VerifyResponse{
		Status:  "success",
		Message: "Transaction fetched successfully",
		Data: &lib.TransactionDetail{
			ID:          lib.GatewayID(id),
			TxRef:       "ref-" + id,
			FlwRef:      "FLW-" + id,
			Amount:      decimal.NewFromInt(4500),
			Currency:    "NGN",
			Status:      status,
			PaymentType: "card",
			Customer: lib.GatewayCustomer{
				Name:        "Ada Obi",
				PhoneNumber: "08012345678",
				Email:       email,
			},
		},
	}
	res.Raw, _ = json.Marshal(res)
	return res
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*lib.SendMailInput
}

func (r *recordingMailer) Send(input *lib.SendMailInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, input)
	return nil
}

func (r *recordingMailer) Sent() []*lib.SendMailInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*lib.SendMailInput(nil), r.sent...)
}

type TestSuite struct {
	suite.Suite
	DB      *gorm.DB
	Gateway *scriptedGateway
	Mailer  *recordingMailer
	Router  *gin.Engine
	Tokens  map[string]string
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	registerValidators()
}

func (s *TestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	inner, err := d.DB()
	s.Require().NoError(err)
	inner.SetMaxOpenConns(1)
	s.Require().NoError(d.AutoMigrate(models.All()...))
	db.NewDB(d)
	s.DB = d

	s.Gateway = &scriptedGateway{
		replies: make(map[string][]*lib.VerifyResponse),
		calls:   make(map[string]int),
	}
	s.Mailer = &recordingMailer{}
	appMailer = s.Mailer

	scheduler, err = lib.NewScheduler(nil)
	s.Require().NoError(err)
	scheduler.Start()

	services = common.NewServices(common.Deps{
		DB:             d,
		Gateway:        s.Gateway,
		Mailer:         s.Mailer,
		VerifyAttempts: 5,
		VerifyDelay:    0,
	})

	s.Tokens = make(map[string]string)
	for _, u := range []models.User{
		{Name: "Ada Obi", Email: "ada@example.com", Role: types.ROLE_CUSTOMER, State: "Lagos"},
		{Name: "Lagos Admin", Email: "admin@lagos.example.com", Role: types.ROLE_ADMIN, State: "Lagos"},
		{Name: "Kano Admin", Email: "admin@kano.example.com", Role: types.ROLE_ADMIN, State: "Kano"},
		{Name: "Chief", Email: "chief@example.com", Role: types.ROLE_CHIEF_ADMIN},
	} {
		user := u
		s.Require().NoError(d.Create(&user).Error)
		token, err := utils.GenerateJWT(&user)
		s.Require().NoError(err)
		s.Tokens[user.Email] = token
	}

	s.Router = setupRouter()
	registerRoutes(s.Router)
}

func (s *TestSuite) TearDownTest() {
	scheduler.Shutdown()
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func (s *TestSuite) request(method, url, email string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		rbytes, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = strings.NewReader(string(rbytes))
	}
	req, err := http.NewRequest(method, url, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Tokens[email]))
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) count(model any) int64 {
	var n int64
	s.DB.Model(model).Count(&n)
	return n
}

const customerEmail = "ada@example.com"

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	s.T().Setenv("MAINTENANCE_MODE", "true")

	w := s.request("GET", "/api/v1/products?state=Lagos", "", nil)
	assert.Equal(s.T(), 503, w.Code)
	assert.Equal(s.T(), "server is under maintenance", gjson.Get(w.Body.String(), "error").String())
}

func (s *TestSuite) TestAuthRequired() {
	w := s.request("GET", "/api/v1/orders/user", "", nil)
	assert.Equal(s.T(), 401, w.Code)

	w = s.request("GET", "/api/v1/flutterwave/failed-transactions", customerEmail, nil)
	assert.Equal(s.T(), 403, w.Code)
	w = s.request("GET", "/api/v1/flutterwave/failed-transactions", "admin@lagos.example.com", nil)
	assert.Equal(s.T(), 403, w.Code)
	w = s.request("GET", "/api/v1/flutterwave/failed-transactions", "chief@example.com", nil)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestSaveTransaction() {
	body := map[string]any{
		"transactionId": "TX1",
		"tx_ref":        "ref1",
		"amount":        500,
		"customer": map[string]any{
			"email":        customerEmail,
			"phone_number": "08012345678",
			"name":         "Ada Obi",
		},
	}
	w := s.request("POST", "/api/v1/flutterwave/save-transaction", customerEmail, body)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(common.MSG_TRANSACTION_SAVED, gjson.Get(w.Body.String(), "message").String())
	s.Equal("pending", gjson.Get(w.Body.String(), "data.status").String())

	body["amount"] = 900
	w = s.request("POST", "/api/v1/flutterwave/save-transaction", customerEmail, body)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(common.MSG_TRANSACTION_EXISTS, gjson.Get(w.Body.String(), "message").String())
	s.EqualValues(1, s.count(&models.FlutterwaveTransaction{}))

	var stored models.FlutterwaveTransaction
	s.Require().NoError(s.DB.First(&stored).Error)
	s.True(stored.Amount.Equal(decimal.NewFromInt(500)))
	s.Equal("Lagos", stored.State)

	w = s.request("POST", "/api/v1/flutterwave/save-transaction", customerEmail, map[string]any{"tx_ref": "ref2"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(gjson.Get(w.Body.String(), "error").String(), "transactionId")
}

func (s *TestSuite) TestVerifyTransaction() {
	s.Gateway.script("TX2", gatewayReply("TX2", "failed", customerEmail))
	w := s.request("GET", "/api/v1/flutterwave/verify/TX2", customerEmail, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("failed", gjson.Get(w.Body.String(), "data.data.status").String())
	s.Zero(s.count(&models.FlutterwaveTransaction{}))
	s.Zero(s.count(&models.FailedTransaction{}))

	w = s.request("GET", "/api/v1/flutterwave/verify/TX404", customerEmail, nil)
	s.Equal(http.StatusInternalServerError, w.Code)

	s.Gateway.script("TX3", gatewayReply("TX3", "successful", customerEmail))
	w = s.request("GET", "/api/v1/flutterwave/verify/TX3", customerEmail, nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(gjson.Get(w.Body.String(), "result.created").Bool())
	s.Equal("ref-TX3", gjson.Get(w.Body.String(), "data.tx_ref").String())
	s.EqualValues(1, s.count(&models.FlutterwaveTransaction{}))
	s.Equal(1, s.Gateway.Calls("TX3"))
}

func (s *TestSuite) TestVerifyTransactionWithoutSession() {
	s.Gateway.script("TXP", gatewayReply("TXP", "successful", customerEmail))
	w := s.request("GET", "/api/v1/flutterwave/verify/TXP", "", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(gjson.Get(w.Body.String(), "result.created").Bool())

	var stored models.FlutterwaveTransaction
	s.Require().NoError(s.DB.Where("transaction_id = ?", "TXP").First(&stored).Error)
	s.Equal(types.TRANSACTION_SUCCESSFUL, stored.Status)

	w = s.request("POST", "/api/v1/flutterwave/save-transaction", "", map[string]any{"transactionId": "TXQ", "tx_ref": "refq"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestSaveTransactionIgnoresClientStatusAndOwner() {
	var other models.User
	s.Require().NoError(s.DB.Where("email = ?", "admin@kano.example.com").First(&other).Error)

	w := s.request("POST", "/api/v1/flutterwave/save-transaction", customerEmail, map[string]any{
		"transactionId": "TXF",
		"tx_ref":        "reff",
		"amount":        1000,
		"status":        "successful",
		"userId":        other.ID,
		"state":         "Kano",
		"customer":      map[string]any{"email": customerEmail, "phone_number": "08012345678", "name": "Ada Obi"},
	})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	var ada models.User
	s.Require().NoError(s.DB.Where("email = ?", customerEmail).First(&ada).Error)
	var stored models.FlutterwaveTransaction
	s.Require().NoError(s.DB.Where("transaction_id = ?", "TXF").First(&stored).Error)
	s.Equal(types.TRANSACTION_PENDING, stored.Status)
	s.Require().NotNil(stored.UserID)
	s.Equal(ada.ID, *stored.UserID)
	s.Equal("Lagos", stored.State)
}

func webhookPayload(id string, email string) string {
	return fmt.Sprintf(`{"event":"charge.completed","data":{"id":"%s","tx_ref":"webhook-ref","amount":1,"status":"successful","customer":{"email":"%s","name":"Spoofed"}}}`, id, email)
}

func (s *TestSuite) TestWebhookSyncRetriesUntilVerified() {
	s.T().Setenv("FLUTTERWAVE_WEBHOOK_MODE", "sync")
	failed := gatewayReply("TX5", "failed", customerEmail)
	s.Gateway.script("TX5", nil, failed, gatewayReply("TX5", "successful", customerEmail))

	w := s.request("POST", "/api/v1/flutterwave/webhook", "", webhookPayload("TX5", "spoof@example.com"))
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(3, s.Gateway.Calls("TX5"))

	var stored models.FlutterwaveTransaction
	s.Require().NoError(s.DB.Where("transaction_id = ?", "TX5").First(&stored).Error)
	s.Equal("ref-TX5", stored.TxRef)
	s.Equal(customerEmail, stored.Customer.Email)
	s.True(stored.Amount.Equal(decimal.NewFromInt(4500)))
	s.Equal(types.TRANSACTION_SUCCESSFUL, stored.Status)
	s.Require().NotNil(stored.UserID)
	s.Equal("Lagos", stored.State)
}

func (s *TestSuite) TestWebhookSyncExhaustion() {
	s.T().Setenv("FLUTTERWAVE_WEBHOOK_MODE", "sync")
	s.Gateway.script("TX6", gatewayReply("TX6", "failed", customerEmail))

	w := s.request("POST", "/api/v1/flutterwave/webhook", "", webhookPayload("TX6", customerEmail))
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal(5, s.Gateway.Calls("TX6"))
	s.Zero(s.count(&models.FlutterwaveTransaction{}))
	s.EqualValues(1, s.count(&models.FailedTransaction{}))
}

func (s *TestSuite) TestWebhookAsyncQueuesWork() {
	s.Gateway.script("TX7", gatewayReply("TX7", "successful", customerEmail))

	w := s.request("POST", "/api/v1/flutterwave/webhook", "", webhookPayload("TX7", customerEmail))
	s.Equal(http.StatusAccepted, w.Code)
	s.Equal("queued", gjson.Get(w.Body.String(), "status").String())

	s.Eventually(func() bool {
		return s.count(&models.FlutterwaveTransaction{}) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func (s *TestSuite) TestWebhookRejections() {
	w := s.request("POST", "/api/v1/flutterwave/webhook", "", `{"data":`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request("POST", "/api/v1/flutterwave/webhook", "", `{"data":{"id":"TX8","status":"successful"}}`)
	s.Equal(http.StatusBadRequest, w.Code)

	s.T().Setenv("FLUTTERWAVE_SECRET_HASH", "s3cret")
	w = s.request("POST", "/api/v1/flutterwave/webhook", "", webhookPayload("TX8", customerEmail))
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.Gateway.Calls("TX8"))
}

func (s *TestSuite) TestReconcileRecoversFailedTransaction() {
	s.Require().NoError(s.DB.Create(&models.FailedTransaction{
		TransactionID: "TX9",
		TxRef:         "ref-TX9",
		Email:         customerEmail,
		Status:        types.TRANSACTION_FAILED,
		Attempts:      5,
	}).Error)
	s.Gateway.script("TX9", gatewayReply("TX9", "successful", customerEmail))

	w := s.request("POST", "/api/v1/flutterwave/reconcile", "chief@example.com", nil)
	s.Equal(http.StatusOK, w.Code)
	s.EqualValues(1, gjson.Get(w.Body.String(), "data.recovered").Int())

	var row models.FailedTransaction
	s.Require().NoError(s.DB.Where("transaction_id = ?", "TX9").First(&row).Error)
	s.Equal(types.TRANSACTION_SUCCESSFUL, row.Status)
	s.EqualValues(1, s.count(&models.FailedTransaction{}))
	s.Zero(s.count(&models.FlutterwaveTransaction{}))
}

func (s *TestSuite) TestOrders() {
	lagosBook := models.Product{Title: "Half of a Yellow Sun", Slug: "half-of-a-yellow-sun", Price: decimal.NewFromInt(3000), Stock: 4, State: "Lagos"}
	kanoBook := models.Product{Title: "Purple Hibiscus", Slug: "purple-hibiscus", Price: decimal.NewFromInt(2000), Stock: 4, State: "Kano"}
	s.Require().NoError(s.DB.Create(&lagosBook).Error)
	s.Require().NoError(s.DB.Create(&kanoBook).Error)

	order := func(items ...map[string]any) map[string]any {
		return map[string]any{
			"items":   items,
			"name":    "Ada Obi",
			"email":   customerEmail,
			"phone":   "08012345678",
			"address": "1 Marina",
			"city":    "Lagos Island",
		}
	}

	s.Run("rejects a product from another state", func() {
		w := s.request("POST", "/api/v1/orders", customerEmail, order(
			map[string]any{"productId": lagosBook.ID, "quantity": 1},
			map[string]any{"productId": kanoBook.ID, "quantity": 1},
		))
		s.Equal(http.StatusBadRequest, w.Code)
		s.Zero(s.count(&models.Order{}))
	})

	var orderID uint
	s.Run("creates an order and takes stock", func() {
		w := s.request("POST", "/api/v1/orders", customerEmail, order(map[string]any{"productId": lagosBook.ID, "quantity": 2}))
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
		s.Equal("6000", gjson.Get(w.Body.String(), "data.total_price").String())
		orderID = uint(gjson.Get(w.Body.String(), "data.id").Uint())

		var p models.Product
		s.Require().NoError(s.DB.First(&p, lagosBook.ID).Error)
		s.EqualValues(2, p.Stock)
	})

	s.Run("admins only update orders of their state", func() {
		w := s.request("PUT", "/api/v1/orders/status", "admin@lagos.example.com", map[string]any{"orderId": orderID, "status": "lost"})
		s.Equal(http.StatusBadRequest, w.Code)

		w = s.request("PUT", "/api/v1/orders/status", "admin@kano.example.com", map[string]any{"orderId": orderID, "status": "shipped"})
		s.Equal(http.StatusForbidden, w.Code)

		w = s.request("PUT", "/api/v1/orders/status", customerEmail, map[string]any{"orderId": orderID, "status": "shipped"})
		s.Equal(http.StatusForbidden, w.Code)

		w = s.request("PUT", "/api/v1/orders/status", "admin@lagos.example.com", map[string]any{"orderId": 999, "status": "shipped"})
		s.Equal(http.StatusNotFound, w.Code)

		w = s.request("PUT", "/api/v1/orders/status", "admin@lagos.example.com", map[string]any{"orderId": orderID, "status": "shipped"})
		s.Equal(http.StatusOK, w.Code)
		s.Equal("shipped", gjson.Get(w.Body.String(), "data.status").String())
		s.NotEmpty(s.Mailer.Sent())
	})

	s.Run("lists orders by audience", func() {
		w := s.request("GET", "/api/v1/orders/user", customerEmail, nil)
		s.Equal(http.StatusOK, w.Code)
		s.EqualValues(1, gjson.Get(w.Body.String(), "count").Int())

		w = s.request("GET", "/api/v1/orders/admin", "admin@kano.example.com", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Zero(len(gjson.Get(w.Body.String(), "data").Array()))

		w = s.request("GET", "/api/v1/orders/admin", "chief@example.com", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Len(gjson.Get(w.Body.String(), "data.Lagos").Array(), 1)
	})
}

func (s *TestSuite) TestProductsAndAdminOrders() {
	w := s.request("POST", "/api/v1/products", "admin@kano.example.com", map[string]any{"title": "Arrow of God", "price": 1500, "stock": 3})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("arrow-of-god", gjson.Get(w.Body.String(), "data.slug").String())

	w = s.request("GET", "/api/v1/products?state=Kano", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.EqualValues(1, gjson.Get(w.Body.String(), "count").Int())

	w = s.request("GET", "/api/v1/products", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request("POST", "/api/v1/admin-orders", "admin@kano.example.com", map[string]any{"items": []map[string]any{{"title": "Arrow of God", "quantity": 10}}})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	id := gjson.Get(w.Body.String(), "data.id").Uint()

	w = s.request("PUT", "/api/v1/admin-orders/status", "admin@kano.example.com", map[string]any{"orderId": id, "status": "processing"})
	s.Equal(http.StatusForbidden, w.Code)
	w = s.request("PUT", "/api/v1/admin-orders/status", "chief@example.com", map[string]any{"orderId": id, "status": "processing"})
	s.Equal(http.StatusOK, w.Code)

	w = s.request("GET", "/api/v1/admin-orders", "chief@example.com", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(gjson.Get(w.Body.String(), "data.Kano").Array(), 1)
}

func (s *TestSuite) TestOTPLogin() {
	w := s.request("POST", "/api/v1/auth/otp/request", "", map[string]any{"email": "new@example.com"})
	s.Equal(http.StatusServiceUnavailable, w.Code)

	rd, mock := redismock.NewClientMock()
	lib.NewRedisClient(rd)
	defer lib.NewRedisClient(nil)

	mock.Regexp().ExpectSet("otp:new@example.com", `^[0-9]{6}$`, 10*time.Minute).SetVal("OK")
	mock.ExpectDel("otp:attempts:new@example.com").SetVal(0)
	w = s.request("POST", "/api/v1/auth/otp/request", "", map[string]any{"email": "new@example.com"})
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().Len(s.Mailer.Sent(), 1)
	s.Equal([]string{"new@example.com"}, s.Mailer.Sent()[0].To)

	mock.ExpectGet("otp:new@example.com").SetVal("123456")
	mock.ExpectIncr("otp:attempts:new@example.com").SetVal(1)
	mock.ExpectExpire("otp:attempts:new@example.com", 10*time.Minute).SetVal(true)
	w = s.request("POST", "/api/v1/auth/otp/verify", "", map[string]any{"email": "new@example.com", "code": "654321"})
	s.Equal(http.StatusUnauthorized, w.Code)

	mock.ExpectGet("otp:new@example.com").SetVal("123456")
	w = s.request("POST", "/api/v1/auth/otp/verify", "", map[string]any{"email": "new@example.com", "code": "123456"})
	s.Equal(http.StatusBadRequest, w.Code)

	mock.ExpectGet("otp:new@example.com").SetVal("123456")
	mock.ExpectDel("otp:new@example.com", "otp:attempts:new@example.com").SetVal(1)
	w = s.request("POST", "/api/v1/auth/otp/verify", "", map[string]any{"email": "new@example.com", "code": "123456", "state": "Lagos", "name": "New"})
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	token := gjson.Get(w.Body.String(), "token").String()
	s.NotEmpty(token)

	var user models.User
	s.Require().NoError(s.DB.Where("email = ?", "new@example.com").First(&user).Error)
	s.True(user.EmailVerified)
	s.Equal(types.ROLE_CUSTOMER, user.Role)
	s.NoError(mock.ExpectationsWereMet())

	s.Tokens["new@example.com"] = token
	w = s.request("GET", "/api/v1/orders/user", "new@example.com", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *TestSuite) TestOTPRevokedAfterRepeatedFailures() {
	rd, mock := redismock.NewClientMock()
	lib.NewRedisClient(rd)
	defer lib.NewRedisClient(nil)

	wrong := map[string]any{"email": customerEmail, "code": "000000"}
	for i := int64(1); i < config.DEFAULT_OTP_MAX_ATTEMPTS; i++ {
		mock.ExpectGet("otp:ada@example.com").SetVal("123456")
		mock.ExpectIncr("otp:attempts:ada@example.com").SetVal(i)
		if i == 1 {
			mock.ExpectExpire("otp:attempts:ada@example.com", 10*time.Minute).SetVal(true)
		}
		w := s.request("POST", "/api/v1/auth/otp/verify", "", wrong)
		s.Equal(http.StatusUnauthorized, w.Code)
	}

	mock.ExpectGet("otp:ada@example.com").SetVal("123456")
	mock.ExpectIncr("otp:attempts:ada@example.com").SetVal(config.DEFAULT_OTP_MAX_ATTEMPTS)
	mock.ExpectDel("otp:ada@example.com", "otp:attempts:ada@example.com").SetVal(2)
	w := s.request("POST", "/api/v1/auth/otp/verify", "", wrong)
	s.Equal(http.StatusUnauthorized, w.Code)

	mock.ExpectGet("otp:ada@example.com").RedisNil()
	w = s.request("POST", "/api/v1/auth/otp/verify", "", map[string]any{"email": customerEmail, "code": "123456"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("invalid or expired code", gjson.Get(w.Body.String(), "error").String())
	s.NoError(mock.ExpectationsWereMet())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

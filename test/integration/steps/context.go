// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardledger/backend/internal/application/usecase/billing"
	"github.com/cardledger/backend/internal/application/usecase/card"
	"github.com/cardledger/backend/internal/infra/server/router"
	"github.com/cardledger/backend/internal/integration/adapters"
	"github.com/cardledger/backend/internal/integration/cache"
	"github.com/cardledger/backend/internal/integration/entrypoint/controller"
	"github.com/cardledger/backend/internal/integration/entrypoint/middleware"
	"github.com/cardledger/backend/internal/integration/persistence"
	"github.com/cardledger/backend/internal/integration/persistence/model"
	"github.com/cardledger/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

type testContext struct {
	uri               string
	headers           map[string]string
	client            *http.Client
	response          *response
	db                *mock.Db
	serverPort        int
	accessToken       string
	currentUserID     uuid.UUID
	userIDs           map[string]uuid.UUID
	currentCardID     uuid.UUID
	currentInvoiceID  uuid.UUID
	currentPurchaseID uuid.UUID
	parentPurchaseID  uuid.UUID
}

type response struct {
	status int
	body   any
}

var serverInit sync.Once
var testDB *mock.Db
var testServerPort int
var portInit sync.Once

func initializePort() {
	portInit.Do(func() {
		testServerPort = findAvailablePort()
		_ = os.Setenv("SERVER_PORT", strconv.Itoa(testServerPort))
		_ = os.Setenv("ENV", "test")
	})
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	initializePort()

	test := &testContext{
		uri:        fmt.Sprintf("http://localhost:%d", testServerPort),
		client:     &http.Client{Timeout: 10 * time.Second},
		serverPort: testServerPort,
		userIDs:    make(map[string]uuid.UUID),
		db: mock.NewDb(map[string]any{
			"credit_cards":   &model.CreditCardModel{},
			"invoices":       &model.InvoiceModel{},
			"purchases":      &model.PurchaseModel{},
			"ledger_entries": &model.LedgerEntryModel{},
		}),
	}

	testDB = test.db

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		test.before()
		return ctx, nil
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)

	// Auth setup steps
	ctx.Given(`^I am logged in as "([^"]*)"$`, test.iAmLoggedInAs)
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)

	// Card setup steps
	ctx.Given(`^a credit card named "([^"]*)" exists with limit "([^"]*)", closing day (\d+) and due day (\d+)$`, test.aCreditCardExists)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
}

func findAvailablePort() int {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func (t *testContext) before() {
	t.headers = make(map[string]string)
	t.accessToken = ""
	t.currentUserID = uuid.Nil
	t.userIDs = make(map[string]uuid.UUID)
	t.currentCardID = uuid.Nil
	t.currentInvoiceID = uuid.Nil
	t.currentPurchaseID = uuid.Nil
	t.parentPurchaseID = uuid.Nil

	if t.db != nil {
		_ = t.db.ClearDB()
	}
	_ = mock.ClearRedis(mock.NewRedis())
}

func (t *testContext) startServer() {
	serverInit.Do(func() {
		go func() {
			gin.SetMode(gin.TestMode)

			// Create repositories
			cardRepo := persistence.NewCreditCardRepository(testDB.DbConn)
			invoiceRepo := persistence.NewInvoiceRepository(testDB.DbConn)
			purchaseRepo := persistence.NewPurchaseRepository(testDB.DbConn)
			ledgerRepo := persistence.NewLedgerRepository(testDB.DbConn)
			txManager := persistence.NewTxManager(testDB.DbConn)

			// Create adapters/services
			tokenService := adapters.NewTokenService(testJWTSecret)
			invalidator := cache.NewRedisInvalidator(mock.NewRedis())

			// Create billing use cases
			invoiceLifecycle := billing.NewInvoiceLifecycle(invoiceRepo)
			allocateUseCase := billing.NewAllocatePurchaseUseCase(cardRepo, invoiceRepo, purchaseRepo, invoiceLifecycle, txManager, invalidator)
			payInvoiceUseCase := billing.NewApplyInvoicePaymentUseCase(cardRepo, invoiceRepo, ledgerRepo, txManager, invalidator)
			deletePurchaseUseCase := billing.NewDeletePurchaseUseCase(cardRepo, invoiceRepo, purchaseRepo, invoiceLifecycle, txManager, invalidator)
			statementUseCase := billing.NewGetCardStatementUseCase(cardRepo, invoiceRepo, purchaseRepo)
			availableLimitUseCase := billing.NewGetAvailableLimitUseCase(cardRepo, invoiceRepo)
			listLedgerUseCase := billing.NewListLedgerUseCase(ledgerRepo)

			// Create card use cases
			createCardUseCase := card.NewCreateCardUseCase(cardRepo)
			listCardsUseCase := card.NewListCardsUseCase(cardRepo, invoiceRepo)
			updateCardUseCase := card.NewUpdateCardUseCase(cardRepo)

			// Create controllers
			healthController := controller.NewHealthController(func() bool {
				return testDB != nil && testDB.DbConn != nil
			})

			creditCardController := controller.NewCreditCardController(
				createCardUseCase,
				listCardsUseCase,
				updateCardUseCase,
				statementUseCase,
				availableLimitUseCase,
				allocateUseCase,
				payInvoiceUseCase,
				deletePurchaseUseCase,
			)

			ledgerController := controller.NewLedgerController(listLedgerUseCase)

			// Create middleware
			writeThrottle := middleware.NewWriteThrottleWithConfig(1000, 1*time.Minute)
			authMiddleware := middleware.NewAuthMiddleware(tokenService)

			r := router.NewRouter(healthController, creditCardController, ledgerController, writeThrottle, authMiddleware)
			engine := r.Setup("test")

			addr := fmt.Sprintf(":%d", testServerPort)
			server := &http.Server{
				Addr:    addr,
				Handler: engine,
			}

			_ = server.ListenAndServe()
		}()
	})

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(t.uri + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (t *testContext) theAPIServerIsRunning() error {
	t.startServer()
	return nil
}

// iAmLoggedInAs issues a valid access token for the given email. The same
// email maps to the same user ID within a scenario.
func (t *testContext) iAmLoggedInAs(email string) error {
	userID, ok := t.userIDs[email]
	if !ok {
		userID = uuid.New()
		t.userIDs[email] = userID
	}
	t.currentUserID = userID

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"exp":     jwt.NewNumericDate(now.Add(15 * time.Minute)),
		"iat":     jwt.NewNumericDate(now),
		"nbf":     jwt.NewNumericDate(now),
		"iss":     "cardledger",
		"sub":     userID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		return fmt.Errorf("failed to generate access token: %w", err)
	}
	t.accessToken = tokenString

	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	return nil
}

func (t *testContext) aCreditCardExists(name, limit string, closingDay, dueDay int) error {
	limitValue, err := decimal.NewFromString(limit)
	if err != nil {
		return fmt.Errorf("invalid limit '%s': %w", limit, err)
	}

	cardID := uuid.New()
	t.currentCardID = cardID

	now := time.Now().UTC()
	cardModel := &model.CreditCardModel{
		ID:         cardID,
		UserID:     t.currentUserID,
		Name:       name,
		Limit:      limitValue,
		ClosingDay: closingDay,
		DueDay:     dueDay,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result := t.db.DbConn.Create(cardModel)
	return result.Error
}

func (t *testContext) iSendARequestTo(method, path string) error {
	path = t.replacePlaceholders(path)
	return t.executeRequest(method, path, nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	path = t.replacePlaceholders(path)

	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, path, payload)
}

func (t *testContext) replacePlaceholders(content string) string {
	content = strings.ReplaceAll(content, "{{card_id}}", t.currentCardID.String())
	content = strings.ReplaceAll(content, "{{invoice_id}}", t.currentInvoiceID.String())
	content = strings.ReplaceAll(content, "{{purchase_id}}", t.currentPurchaseID.String())
	content = strings.ReplaceAll(content, "{{parent_purchase_id}}", t.parentPurchaseID.String())
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var req *http.Request
	var err error

	url := t.uri + path

	if payload != nil {
		req, err = http.NewRequest(method, url, bytes.NewReader(payload))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status: resp.StatusCode,
	}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
	} else {
		t.response.body = responseBody
		t.captureIDs(responseBody)
	}

	return nil
}

// captureIDs pulls entity IDs out of responses so later steps can
// reference them through placeholders.
func (t *testContext) captureIDs(body map[string]any) {
	// Card creation responses carry closing_day alongside the ID.
	if idStr, ok := body["id"].(string); ok {
		if _, isCard := body["closing_day"]; isCard {
			if id, err := uuid.Parse(idStr); err == nil {
				t.currentCardID = id
			}
		}
	}

	// Payment responses carry the invoice directly.
	if invoice, ok := body["invoice"].(map[string]any); ok {
		t.captureInvoiceID(invoice)
	}

	// Allocation responses nest the statement.
	statement := body
	if nested, ok := body["statement"].(map[string]any); ok {
		statement = nested
	}

	invoices, ok := statement["invoices"].([]any)
	if !ok || len(invoices) == 0 {
		return
	}

	first, ok := invoices[0].(map[string]any)
	if !ok {
		return
	}

	if invoice, ok := first["invoice"].(map[string]any); ok {
		t.captureInvoiceID(invoice)
	}

	purchases, ok := first["purchases"].([]any)
	if !ok || len(purchases) == 0 {
		return
	}

	if purchase, ok := purchases[0].(map[string]any); ok {
		if idStr, ok := purchase["id"].(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				t.currentPurchaseID = id
			}
		}
		if parentStr, ok := purchase["parent_purchase_id"].(string); ok {
			if id, err := uuid.Parse(parentStr); err == nil {
				t.parentPurchaseID = id
			}
		}
	}
}

func (t *testContext) captureInvoiceID(invoice map[string]any) {
	if idStr, ok := invoice["id"].(string); ok {
		if id, err := uuid.Parse(idStr); err == nil {
			t.currentInvoiceID = id
		}
	}
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if _, ok := t.response.body.(map[string]any); !ok {
		return fmt.Errorf("response is not JSON: %v", t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldContain(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}

	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	body, ok := t.response.body.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	if entity, ok := t.db.GetModel(table); ok {
		entityType := reflect.TypeOf(entity).Elem()
		entitySlice := reflect.MakeSlice(reflect.SliceOf(entityType), 0, 0)
		entitySlicePtr := reflect.New(entitySlice.Type())
		entitySlicePtr.Elem().Set(entitySlice)

		result := t.db.DbConn.Unscoped().Find(entitySlicePtr.Interface())
		if result.Error != nil {
			return result.Error
		}

		count := entitySlicePtr.Elem().Len()
		if count != quantity {
			return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
		}
		return nil
	}
	return fmt.Errorf("table '%s' not found in models", table)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}

	if entity, ok := t.db.GetModel(table); ok {
		entityType := reflect.TypeOf(entity).Elem()
		entitySlice := reflect.MakeSlice(reflect.SliceOf(entityType), 0, 0)
		entitySlicePtr := reflect.New(entitySlice.Type())
		entitySlicePtr.Elem().Set(entitySlice)

		query := t.db.DbConn.Unscoped()
		for key, value := range criteria {
			query = query.Where(fmt.Sprintf("%s = ?", key), value)
		}

		result := query.Find(entitySlicePtr.Interface())
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		count := entitySlicePtr.Elem().Len()
		if count != quantity {
			return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
		}
		return nil
	}
	return fmt.Errorf("table '%s' not found in models", table)
}

func getFieldValue(object any, dotSeparatedField string) any {
	if object == nil {
		return nil
	}

	var objectMap map[string]any
	switch v := object.(type) {
	case map[string]any:
		objectMap = v
	default:
		objectJSON, _ := json.Marshal(object)
		if err := json.Unmarshal(objectJSON, &objectMap); err != nil {
			return nil
		}
	}

	fields := strings.Split(dotSeparatedField, ".")
	var field any = objectMap

	for _, currentField := range fields {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace/internal/handlers"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"
)

// setupApp builds a Fiber app over a private in-memory SQLite database. The
// database is named after the test so parallel tests never share state.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil) // nil events client

	app := fiber.New()
	app.Use(cors.New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Marketplace Backend is Running!"})
	})
	app.Get("/create-db", func(c *fiber.Ctx) error {
		if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create database"})
		}
		return c.JSON(fiber.Map{"message": "Database created successfully!"})
	})
	handlers.NewProductHandler(productService).RegisterRoutes(app)
	handlers.NewOrderHandler(orderService).RegisterRoutes(app)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 && raw[0] == '{' {
		assert.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func listOrders(t *testing.T, app *fiber.App) []models.Order {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []models.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	resp.Body.Close()
	return orders
}

func TestMain(m *testing.M) {
	// Suppress handler logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestCrossOriginRequestsAllowed(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRootAndCreateDB(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Marketplace Backend is Running!", body["message"])

	resp, body = doJSON(t, app, http.MethodGet, "/create-db", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Database created successfully!", body["message"])
}

// TestMarketplaceScenario runs the full product/order lifecycle: creation
// with string-typed numerics, forced Pending status, free-text status
// updates and the cascading product delete.
func TestMarketplaceScenario(t *testing.T) {
	app, _ := setupApp(t)

	// Numeric fields arrive as strings and must be coerced.
	resp, body := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       "1.5",
		"category":    "stationery",
		"seller_id":   "3",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product added successfully!", body["message"])
	assert.EqualValues(t, 1, body["product_id"])

	// The stored row carries the coerced values.
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var products []models.Product
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&products))
	listResp.Body.Close()
	assert.Len(t, products, 1)
	assert.Equal(t, 1.5, products[0].Price)
	assert.Equal(t, 3, products[0].SellerID)

	// Orders start Pending even when the payload claims otherwise.
	resp, body = doJSON(t, app, http.MethodPost, "/orders", map[string]interface{}{
		"product_id":    1,
		"buyer_name":    "A",
		"buyer_phone":   "555",
		"buyer_address": "Street 1",
		"status":        "Shipped",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Order placed successfully!", body["message"])
	assert.EqualValues(t, 1, body["order_id"])
	order := body["order"].(map[string]interface{})
	assert.Equal(t, "Pending", order["status"])
	assert.NotNil(t, order["product"])

	// Status updates store any string verbatim.
	for _, status := range []string{"Shipped", "xyz123"} {
		resp, body = doJSON(t, app, http.MethodPut, "/orders/1", map[string]string{"status": status})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		updated := body["order"].(map[string]interface{})
		assert.Equal(t, status, updated["status"])
	}

	// Deleting the product cascades to its orders.
	resp, body = doJSON(t, app, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product deleted successfully!", body["message"])
	assert.Empty(t, listOrders(t, app))
}

func TestCreateProductValidation(t *testing.T) {
	app, _ := setupApp(t)

	// Empty payload: every missing field is reported, keyed by the json
	// names the caller sent.
	resp, body := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])
	fieldErrors := body["errors"].(map[string]interface{})
	for _, field := range []string{"title", "description", "price", "category", "seller_id"} {
		assert.Contains(t, fieldErrors, field)
	}

	// Unparseable body.
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rawResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rawResp.StatusCode)
	rawResp.Body.Close()

	// Non-numeric price is a coercion failure, not a server fault.
	resp, body = doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       "abc",
		"category":    "stationery",
		"seller_id":   3,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "not numeric")
}

func TestProductUpdate(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       1.5,
		"category":    "stationery",
		"seller_id":   3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Partial update: untouched fields keep their values.
	resp, body := doJSON(t, app, http.MethodPut, "/products/1", map[string]interface{}{
		"price": "2.25",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	product := body["product"].(map[string]interface{})
	assert.Equal(t, 2.25, product["price"])
	assert.Equal(t, "Pen", product["title"])
	assert.EqualValues(t, 3, product["seller_id"])

	// Unknown product id.
	resp, body = doJSON(t, app, http.MethodPut, "/products/999", map[string]interface{}{"title": "Ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body["error"])
}

func TestProductDeleteSecondCallNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       1.5,
		"category":    "stationery",
		"seller_id":   3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The second delete must see nothing to remove.
	resp, body := doJSON(t, app, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body["error"])
}

func TestCreateOrderRequiresExistingProduct(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/orders", map[string]interface{}{
		"product_id":    42,
		"buyer_name":    "A",
		"buyer_phone":   "555",
		"buyer_address": "Street 1",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body["error"])

	// No order row may exist after the failed create.
	assert.Empty(t, listOrders(t, app))
}

func TestOrderUpdateValidation(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       1.5,
		"category":    "stationery",
		"seller_id":   3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/orders", map[string]interface{}{
		"product_id":    1,
		"buyer_name":    "A",
		"buyer_phone":   "555",
		"buyer_address": "Street 1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Missing status on an existing order is a validation failure.
	resp, body := doJSON(t, app, http.MethodPut, "/orders/1", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Contains(t, body["errors"].(map[string]interface{}), "status")

	// A missing order wins over a missing status.
	resp, body = doJSON(t, app, http.MethodPut, "/orders/999", map[string]interface{}{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Order not found", body["error"])
}

// TestDanglingOrderSerializesNullProduct covers the read path for an order
// whose product row disappeared without the cascade (e.g. the create/delete
// race): the embedded product must serialize as null instead of failing.
func TestDanglingOrderSerializesNullProduct(t *testing.T) {
	app, db := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       1.5,
		"category":    "stationery",
		"seller_id":   3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/orders", map[string]interface{}{
		"product_id":    1,
		"buyer_name":    "A",
		"buyer_phone":   "555",
		"buyer_address": "Street 1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Remove the product row directly, bypassing the cascading delete.
	assert.NoError(t, db.Exec("DELETE FROM products WHERE id = 1").Error)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var raw []map[string]interface{}
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&raw))
	listResp.Body.Close()
	assert.Len(t, raw, 1)
	assert.Nil(t, raw[0]["product"])
	assert.EqualValues(t, 1, raw[0]["product_id"])
}

func TestOrderDelete(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pen",
		"description": "Blue ink",
		"price":       1.5,
		"category":    "stationery",
		"seller_id":   3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/orders", map[string]interface{}{
		"product_id":    1,
		"buyer_name":    "A",
		"buyer_phone":   "555",
		"buyer_address": "Street 1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodDelete, "/orders/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Order deleted successfully!", body["message"])
	assert.Empty(t, listOrders(t, app))

	resp, body = doJSON(t, app, http.MethodDelete, "/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Order not found", body["error"])
}

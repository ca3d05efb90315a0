package integration

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"digital-delivery-gateway/config"
	s3blob "digital-delivery-gateway/internal/adapter/blob/s3"
	httpHandler "digital-delivery-gateway/internal/adapter/http/handler"
	"digital-delivery-gateway/internal/adapter/storage/fallback"
	redisStorage "digital-delivery-gateway/internal/adapter/storage/redis"
	"digital-delivery-gateway/internal/background"
	"digital-delivery-gateway/internal/broker"
	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/internal/metrics"
	"digital-delivery-gateway/internal/service"
	"digital-delivery-gateway/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookSecret = "shpss_integration_secret"
	testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testAdminSecret   = "integration-admin-secret"

	platformShopID   = "71000000001"
	selfHostedShopID = "71000000002"
)

// testApp builds the full application stack with in-memory record store
// repos, miniredis for the replay guard and rate limiter, the real in-process
// broker, the real S3 presigner (signing is offline) and a recording notifier.
// This exercises the HTTP layer, middleware, handlers and services end-to-end.
type testApp struct {
	server       *httptest.Server
	redis        *miniredis.Miniredis
	orders       *inMemoryOrderRepo
	merchants    *inMemoryMerchantRepo
	catalog      *inMemoryCatalogRepo
	webhooks     *inMemoryWebhookRequestRepo
	downloads    *inMemoryDownloadLogRepo
	notifier     *recordingNotifier
	fallback     *fallback.FileStore
	fallbackPath string
	tasks        *background.Tracker
	tokens       *service.JWTTokenService
	encSvc       *service.AESEncryptionService
	client       *http.Client
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWith(t, nil)
}

func newTestAppWith(t *testing.T, mutate func(cfg *config.Config)) *testApp {
	t.Helper()

	cfg := &config.Config{
		Webhook: config.WebhookConfig{
			Secret:         testWebhookSecret,
			ReplayTTL:      time.Hour,
			ProcessTimeout: 5 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Encryption: config.EncryptionConfig{Key: testEncryptionKey, EmailIndexPepper: "integration-pepper"},
		Storage: config.StorageConfig{
			Bucket:          "platform-files",
			AccessKeyID:     "AKIAPLATFORM",
			SecretAccessKey: "platform-secret",
			Region:          "us-east-1",
		},
		Delivery: config.DeliveryConfig{
			LinkTTL:      time.Hour,
			SignedURLTTL: time.Hour,
			FallbackPath: filepath.Join(t.TempDir(), "orders.json"),
			ServiceName:  "digital-delivery-gateway",
		},
		Notify: config.NotifyConfig{
			FromName:    "Acme Files",
			FromEmail:   "files@acme.test",
			Title:       "Thank you for your order!",
			BaseURL:     "https://files.acme.test",
			MaxAttempts: 1,
			TestToEmail: "ops@acme.test",
		},
		Admin:     config.AdminConfig{JWTSecret: testAdminSecret, Issuer: "ddg-test", Expiry: time.Hour},
		RateLimit: config.RateLimitConfig{Enabled: true, ListingPerMinute: 100, DownloadPerMinute: 100},
	}
	if mutate != nil {
		mutate(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.New("debug", false)

	encSvc, err := service.NewAESEncryptionService(cfg.Encryption.Key)
	require.NoError(t, err)
	indexer, err := service.NewArgon2EmailIndexer(cfg.Encryption.EmailIndexPepper)
	require.NoError(t, err)
	tokens := service.NewJWTTokenService(cfg.Admin.JWTSecret, cfg.Admin.Expiry, cfg.Admin.Issuer)

	app := &testApp{
		redis:     mr,
		orders:    newInMemoryOrderRepo(),
		merchants: newInMemoryMerchantRepo(),
		catalog:   newInMemoryCatalogRepo(),
		webhooks:  &inMemoryWebhookRequestRepo{},
		downloads: &inMemoryDownloadLogRepo{},
		notifier:  &recordingNotifier{},
		tokens:    tokens,
		encSvc:    encSvc,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
	app.fallbackPath = cfg.Delivery.FallbackPath
	app.fallback, err = fallback.Open(cfg.Delivery.FallbackPath, log)
	require.NoError(t, err)
	app.seedCatalog(t)

	ticketBroker := broker.New(service.GenerateSlug, broker.WithLogger(log))
	t.Cleanup(func() { _ = ticketBroker.Close() })

	app.tasks = background.NewTracker(log)
	notifySvc := service.NewNotificationService(app.notifier, cfg.Notify, app.tasks, log)
	orderSvc := service.NewOrderService(
		service.NewHMACWebhookVerifier(cfg.Webhook.Secret),
		app.webhooks, app.orders, app.catalog, app.fallback,
		encSvc, indexer, redisStorage.NewReplayGuard(rdb), notifySvc,
		cfg.Webhook.ReplayTTL, log,
	)
	assetSvc := service.NewAssetService(
		app.orders, app.merchants, app.catalog,
		s3blob.NewBlobStore(log), ticketBroker, encSvc,
		cfg.Storage, cfg.Delivery, log,
	)
	deliverySvc := service.NewDeliveryService(assetSvc, ticketBroker, app.downloads, cfg.Delivery.ServiceName, log)
	supportSvc := service.NewSupportService(app.orders, encSvc, indexer, notifySvc, log)

	reg := prometheus.NewRegistry()
	metrics.RegisterWith(reg)
	reg.MustRegister(
		metrics.NewCountGauge("download_tickets_live", "Download tickets currently redeemable", ticketBroker.Len),
		metrics.NewCountGauge("fallback_orders_held", "Orders kept in the fallback file", app.fallback.Len),
	)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OrderSvc:       orderSvc,
		DeliverySvc:    deliverySvc,
		NotifySvc:      notifySvc,
		SupportSvc:     supportSvc,
		TokenSvc:       tokens,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		RateLimit:      cfg.RateLimit,
		Webhook:        cfg.Webhook,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Tasks:          app.tasks,
		Logger:         log,
	})

	app.server = httptest.NewServer(router)
	t.Cleanup(app.server.Close)
	return app
}

// seedCatalog stores one platform-hosted shop with two products and one
// self-hosted shop with its own bucket.
func (a *testApp) seedCatalog(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()

	a.merchants.put(&domain.Merchant{ShopID: platformShopID, ShopDomain: "acme.myshopify.com", PlanName: "Basic"})

	secretEnc, err := a.encSvc.Encrypt("merchant-secret")
	require.NoError(t, err)
	a.merchants.put(&domain.Merchant{
		ShopID:     selfHostedShopID,
		ShopDomain: "indie.myshopify.com",
		PlanName:   domain.PlanSelfHosting,
		S3: domain.S3Settings{
			AccessKeyID:        "AKIAMERCHANT",
			SecretAccessKeyEnc: secretEnc,
			BucketName:         "merchant-files",
			Region:             "eu-west-1",
		},
	})

	a.catalog.putProduct(&domain.Product{ProductGID: "gid://shopify/Product/1", ShopID: platformShopID, Title: "Field Guide"})
	a.catalog.putProduct(&domain.Product{ProductGID: "gid://shopify/Product/2", ShopID: platformShopID, Title: "Audio Pack"})
	a.catalog.putProduct(&domain.Product{ProductGID: "gid://shopify/Product/3", ShopID: selfHostedShopID, Title: "Sample Kit"})

	a.catalog.putVariant(&domain.Variant{
		VariantGID: domain.VariantGID("111"),
		ShopID:     platformShopID,
		ProductGID: "gid://shopify/Product/1",
		File:       domain.FileInfo{Name: "acme/guide-v2.pdf", OriginalName: "Field Guide.pdf", Size: 1536000},
		FileVersionHistory: []domain.FileVersion{
			{File: domain.FileInfo{Name: "acme/guide-v1.pdf", Size: 900000}, CreatedAt: now.Add(-48 * time.Hour)},
			{File: domain.FileInfo{Name: "acme/guide-v2.pdf", Size: 1536000}, CreatedAt: now},
		},
	})
	a.catalog.putVariant(&domain.Variant{
		VariantGID: domain.VariantGID("222"),
		ShopID:     platformShopID,
		ProductGID: "gid://shopify/Product/2",
		File:       domain.FileInfo{Name: "acme/audio.zip", OriginalName: "audio.zip", Size: 2048},
		FileVersionHistory: []domain.FileVersion{
			{File: domain.FileInfo{Name: "acme/audio.zip", Size: 2048}, CreatedAt: now},
		},
	})
	a.catalog.putVariant(&domain.Variant{
		VariantGID: domain.VariantGID("333"),
		ShopID:     selfHostedShopID,
		ProductGID: "gid://shopify/Product/3",
		File:       domain.FileInfo{Name: "kits/sample.zip", OriginalName: "Sample Kit.zip", Size: 5000},
		FileVersionHistory: []domain.FileVersion{
			{File: domain.FileInfo{Name: "kits/sample.zip", Size: 5000}, CreatedAt: now},
		},
	})
}

func orderPayload(orderID string, email string, variantIDs ...string) []byte {
	items := make([]string, 0, len(variantIDs))
	for _, v := range variantIDs {
		items = append(items, fmt.Sprintf(`{"variant_id":%s,"quantity":1}`, v))
	}
	return []byte(fmt.Sprintf(
		`{"id":%s,"order_number":1001,"financial_status":"paid","email":%q,"customer":{"id":7,"email":%q},"line_items":[%s]}`,
		orderID, email, email, strings.Join(items, ","),
	))
}

// gunzipBase64 reads a signed URL as stored in the download log.
func gunzipBase64(t *testing.T, encoded string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

// fallbackFile reads the orders the fallback store wrote to disk.
func (a *testApp) fallbackFile(t *testing.T) map[string]domain.Order {
	t.Helper()
	data, err := os.ReadFile(a.fallbackPath)
	require.NoError(t, err)
	var orders map[string]domain.Order
	require.NoError(t, json.Unmarshal(data, &orders))
	return orders
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (a *testApp) postWebhook(t *testing.T, topic string, body []byte, signature, webhookID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/webhooks/"+topic, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(service.HeaderShopifyHMAC, signature)
	req.Header.Set(httpHandler.HeaderShopDomain, "acme.myshopify.com")
	if webhookID != "" {
		req.Header.Set(httpHandler.HeaderWebhookID, webhookID)
	}
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (a *testApp) waitForOrder(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	var order *domain.Order
	require.Eventually(t, func() bool {
		o, ok := a.orders.get(orderID)
		order = o
		return ok
	}, 3*time.Second, 10*time.Millisecond, "order %s was never stored", orderID)
	return order
}

type listing struct {
	Products []domain.DeliverableProduct `json:"products"`
}

func (a *testApp) listProducts(t *testing.T, publicOrderID string) (*http.Response, listing) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + "/api/getsignedorderurls/" + publicOrderID)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body listing
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp, body
}

func (a *testApp) download(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_PaidOrderToDownload(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("820982911946154508", "Jane@Example.com", "111", "222")
	resp := app.postWebhook(t, "orders-paid", body, sign(body), "wh-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	order := app.waitForOrder(t, "820982911946154508")
	assert.Equal(t, platformShopID, order.ShopID)
	assert.Equal(t, []string{"111", "222"}, order.VariantIDs)
	assert.Len(t, order.PublicOrderID, 24)
	assert.NotContains(t, order.Customer.EmailEnc, "Example.com", "email is stored encrypted")

	// The customer is emailed a link to the order page.
	require.Eventually(t, func() bool { return len(app.notifier.messages()) == 1 }, 3*time.Second, 10*time.Millisecond)
	msg := app.notifier.messages()[0]
	assert.Equal(t, "Jane@Example.com", msg.ToEmail)
	assert.Contains(t, msg.BodyText, "https://files.acme.test/order/"+order.PublicOrderID)

	// Listing
	listResp, products := app.listProducts(t, order.PublicOrderID)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	require.Len(t, products.Products, 2)

	guide := products.Products[0]
	assert.Equal(t, "Field Guide", guide.Title)
	assert.Equal(t, "acme/guide-v2.pdf", guide.FilePath)
	assert.Equal(t, int64(1536000), guide.Size)
	assert.Equal(t, "1.5 MB", guide.DisplaySize)
	assert.Equal(t, 2, guide.Version)
	assert.Equal(t, "Field Guide.pdf", guide.OriginalFilePath)
	assert.Regexp(t, `^/download/[A-Z0-9]{8}$`, guide.URL)
	assert.Equal(t, "Audio Pack", products.Products[1].Title)
	assert.NotEqual(t, guide.URL, products.Products[1].URL)

	// Download
	dl := app.download(t, guide.URL)
	require.Equal(t, http.StatusFound, dl.StatusCode)
	assert.Equal(t, `attachment; filename="Field Guide.pdf"`, dl.Header.Get("Content-Disposition"))

	location, err := url.Parse(dl.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "platform-files.s3.us-east-1.amazonaws.com", location.Host)
	assert.Equal(t, "/acme/guide-v2.pdf", location.Path)
	assert.True(t, strings.HasPrefix(location.Query().Get("X-Amz-Credential"), "AKIAPLATFORM/"))
	assert.Equal(t, "3600", location.Query().Get("X-Amz-Expires"))

	// Links are reusable until they expire.
	again := app.download(t, guide.URL)
	assert.Equal(t, http.StatusFound, again.StatusCode)

	// Every redemption is logged with the compressed signed URL.
	logs := app.downloads.all()
	require.Len(t, logs, 2)
	assert.Equal(t, "111", logs[0].VariantID)
	assert.Equal(t, strings.TrimPrefix(guide.URL, "/download/"), logs[0].Slug)
	assert.Equal(t, dl.Header.Get("Location"), gunzipBase64(t, logs[0].SignedURLGzip))

	// The delivery was recorded as verified.
	requests := app.webhooks.all()
	require.Len(t, requests, 1)
	assert.True(t, requests[0].Verified)
	assert.Equal(t, "wh-1", requests[0].WebhookID)
}

func TestIntegration_SelfHostedMerchantSignsWithOwnBucket(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("5001", "kit@example.com", "333")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-self").StatusCode)
	order := app.waitForOrder(t, "5001")
	assert.Equal(t, selfHostedShopID, order.ShopID)

	listResp, products := app.listProducts(t, order.PublicOrderID)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	require.Len(t, products.Products, 1)

	dl := app.download(t, products.Products[0].URL)
	require.Equal(t, http.StatusFound, dl.StatusCode)
	location, err := url.Parse(dl.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "merchant-files.s3.eu-west-1.amazonaws.com", location.Host)
	assert.True(t, strings.HasPrefix(location.Query().Get("X-Amz-Credential"), "AKIAMERCHANT/"))
}

func TestIntegration_UnverifiedWebhookRejected(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("6001", "jane@example.com", "111")
	resp := app.postWebhook(t, "orders-paid", body, sign([]byte("something else")), "wh-bad")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Give a wrongly spawned processor the chance to run before asserting.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, app.orders.count())
	assert.Empty(t, app.notifier.messages())

	requests := app.webhooks.all()
	require.Len(t, requests, 1)
	assert.False(t, requests[0].Verified)
}

func TestIntegration_ReplayedAndDuplicateDeliveries(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("7001", "jane@example.com", "111")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-7").StatusCode)
	first := app.waitForOrder(t, "7001")
	require.Eventually(t, func() bool { return len(app.notifier.messages()) == 1 }, 3*time.Second, 10*time.Millisecond)

	// Same delivery retried by the storefront, then the same order under a new delivery id.
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-7").StatusCode)
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-7b").StatusCode)

	require.Eventually(t, func() bool { return len(app.webhooks.all()) == 3 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, app.orders.count())
	current, _ := app.orders.get("7001")
	assert.Equal(t, first.PublicOrderID, current.PublicOrderID, "the stored order is never overwritten")
	assert.Len(t, app.notifier.messages(), 1, "the customer is emailed once")
}

func TestIntegration_RecordStoreDownUsesFallback(t *testing.T) {
	app := newTestApp(t)
	app.orders.setFailing(true)

	body := orderPayload("8001", "jane@example.com", "111")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-8").StatusCode)

	require.Eventually(t, func() bool { return app.fallback.Len() == 1 }, 3*time.Second, 10*time.Millisecond)

	kept := app.fallbackFile(t)
	require.Contains(t, kept, "8001")
	assert.Equal(t, platformShopID, kept["8001"].ShopID)
	assert.Equal(t, 0, app.orders.count())

	// The customer still gets the email.
	require.Eventually(t, func() bool { return len(app.notifier.messages()) == 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestIntegration_RedeliveryAfterFailedProcessing(t *testing.T) {
	app := newTestApp(t)
	app.catalog.setFailing(true)

	body := orderPayload("8501", "jane@example.com", "111")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-85").StatusCode)

	// The id is claimed before the catalog read, so once the read happened
	// and the key is gone the failed attempt has released it.
	require.Eventually(t, func() bool {
		return app.catalog.reads() >= 1 && !app.redis.Exists("webhook:orders-paid:wh-85")
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, app.orders.count())

	app.catalog.setFailing(false)
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-85").StatusCode)

	stored := app.waitForOrder(t, "8501")
	assert.Equal(t, platformShopID, stored.ShopID)
	require.Eventually(t, func() bool { return len(app.notifier.messages()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.True(t, app.redis.Exists("webhook:orders-paid:wh-85"))
}

func TestIntegration_AckedOrdersFinishBeforeShutdown(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 5; i++ {
		body := orderPayload(fmt.Sprintf("86%02d", i), "jane@example.com", "111")
		require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), fmt.Sprintf("wh-86-%d", i)).StatusCode)
	}

	// What the server does after Shutdown: wait for acknowledged work.
	app.server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.tasks.Wait(ctx))

	assert.Equal(t, 5, app.orders.count())
	assert.Len(t, app.notifier.messages(), 5, "order emails are part of the tracked work")
	assert.Equal(t, 0, app.tasks.Pending())
}

func TestIntegration_ComplianceTopicAcked(t *testing.T) {
	app := newTestApp(t)

	body := []byte(`{"shop_id":71000000001,"shop_domain":"acme.myshopify.com"}`)
	resp := app.postWebhook(t, "shop-data-erasure", body, sign(body), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.postWebhook(t, "orders-create", body, sign(body), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegration_UnknownOrderAndLink(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.listProducts(t, "NoSuchOrder000000000000")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	dl := app.download(t, "/download/ZZZZ9999")
	assert.Equal(t, http.StatusNotFound, dl.StatusCode)
	assert.Empty(t, dl.Header.Get("Location"))
	assert.Empty(t, app.downloads.all())
}

func TestIntegration_MissingCatalogVariantFailsListing(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("9001", "jane@example.com", "111", "444")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-9").StatusCode)
	order := app.waitForOrder(t, "9001")

	resp, _ := app.listProducts(t, order.PublicOrderID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegration_RateLimitedListing(t *testing.T) {
	app := newTestAppWith(t, func(cfg *config.Config) {
		cfg.RateLimit.ListingPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		resp, _ := app.listProducts(t, "NoSuchOrder")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	resp, _ := app.listProducts(t, "NoSuchOrder")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	// Downloads have their own budget.
	dl := app.download(t, "/download/ZZZZ9999")
	assert.Equal(t, http.StatusNotFound, dl.StatusCode)
}

func TestIntegration_AdminLookupAndResend(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("10001", "jane@example.com", "111")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-10").StatusCode)
	order := app.waitForOrder(t, "10001")
	require.Eventually(t, func() bool { return len(app.notifier.messages()) == 1 }, 3*time.Second, 10*time.Millisecond)

	token, _, err := app.tokens.Generate("ops")
	require.NoError(t, err)

	adminDo := func(method, path string) (*http.Response, []byte) {
		req, err := http.NewRequest(method, app.server.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, data
	}

	// Lookup is case-insensitive on the email.
	resp, data := adminDo(http.MethodGet, "/api/admin/orders?email="+url.QueryEscape("JANE@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lookup struct {
		Data struct {
			IDs []string `json:"public_order_ids"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &lookup))
	assert.Equal(t, []string{order.PublicOrderID}, lookup.Data.IDs)

	resp, _ = adminDo(http.MethodPost, "/api/admin/orders/"+order.PublicOrderID+"/resend")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, app.notifier.messages(), 2)
	assert.Equal(t, "jane@example.com", app.notifier.messages()[1].ToEmail)

	resp, _ = adminDo(http.MethodPost, "/api/admin/test-email")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ops@acme.test", app.notifier.messages()[2].ToEmail)

	// Without a token
	unauth, err := app.client.Post(app.server.URL+"/api/admin/test-email", "application/json", nil)
	require.NoError(t, err)
	unauth.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, unauth.StatusCode)
}

func TestIntegration_MetricsExposed(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("11001", "jane@example.com", "111")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-11").StatusCode)
	app.waitForOrder(t, "11001")

	resp, err := http.Get(app.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "webhooks_received_total")
	assert.Contains(t, string(data), "http_request_duration_seconds")
	assert.Contains(t, string(data), "fallback_orders_held 0")
}

func TestIntegration_LiveTicketGauge(t *testing.T) {
	app := newTestApp(t)

	body := orderPayload("12001", "jane@example.com", "111", "222")
	require.Equal(t, http.StatusOK, app.postWebhook(t, "orders-paid", body, sign(body), "wh-12").StatusCode)
	order := app.waitForOrder(t, "12001")
	resp, _ := app.listProducts(t, order.PublicOrderID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(app.server.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	data, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), "download_tickets_live 2")
}

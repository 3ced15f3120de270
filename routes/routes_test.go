package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"salon-backend/models"
	"salon-backend/mq"
	"salon-backend/services"
	"salon-backend/testutil"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "routes-test-secret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	fx     testutil.Fixture
	admin  string
	client string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)
	events := &mq.Recorder{}
	sender := services.ConsoleSender{}
	otp := services.NewOTPService(services.NewMemoryCodeStore(), sender, time.Minute, true)

	r := SetupRouter(Deps{
		DB:           db,
		JWTSecret:    testSecret,
		CORSOrigins:  []string{"http://localhost:3000"},
		Appointments: services.NewAppointmentService(db, events),
		Invoices:     services.NewInvoiceService(db, events),
		Carts:        services.NewCartService(db),
		Catalog:      services.NewCatalogService(db),
		Products:     services.NewProductService(db),
		Auth: services.NewAuthService(db, otp, services.AuthConfig{
			JWTSecret:  testSecret,
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		}),
		Reports:   services.NewReportService(db),
		Reminders: services.NewReminderService(db, acceptingSender{}, time.UTC),
		Uploads:   services.NewUploadService(memoryImageStore{}),
	})

	token := func(u models.User, role string) string {
		tok, err := utils.GenerateToken(testSecret, u.ID, role, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}
	return &testServer{
		t:      t,
		router: r,
		fx:     fx,
		admin:  token(fx.Admin, models.RoleAdmin),
		client: token(fx.Client, models.RoleClient),
	}
}

type acceptingSender struct{}

func (acceptingSender) Send(context.Context, string, string) (string, error) {
	return "SM001", nil
}

type memoryImageStore struct{}

func (memoryImageStore) Upload(_ context.Context, r io.Reader, folder string) (*services.UploadedImage, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	return &services.UploadedImage{URL: "https://img.example/salon/" + folder + "/x.png", PublicID: "salon/" + folder + "/x"}, nil
}

type envelope struct {
	OK            bool            `json:"ok"`
	Msg           string          `json:"msg"`
	Data          json.RawMessage `json:"data"`
	IDFacturaCita *uint           `json:"idfacturacita"`
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestBookingApprovalAndInvoice(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/citas/crear", "", gin.H{
		"idUsuario":      s.fx.Client.ID,
		"idTratamiento":  s.fx.Treatment.ID,
		"fechaSolicitud": "2024-05-01",
		"horaSolicitud":  "10:00",
	})
	if code != http.StatusCreated {
		t.Fatalf("crear: %d %+v", code, env)
	}
	created := decode[map[string]any](t, env.Data)
	if created["idcita"] == nil || created["estadocita"] != nil {
		t.Fatalf("crear data = %v", created)
	}
	assocID := uint(created["idusuariocita"].(float64))

	code, env = s.do(http.MethodGet, "/citas/admin/pendientes", s.admin, nil)
	if code != http.StatusOK || len(decode[[]map[string]any](t, env.Data)) != 1 {
		t.Fatalf("pendientes: %d %s", code, env.Data)
	}

	path := "/citas/admin/" + itoa(assocID) + "/aprobar"
	code, env = s.do(http.MethodPut, path, s.admin, nil)
	if code != http.StatusOK {
		t.Fatalf("aprobar: %d %+v", code, env)
	}
	if approved := decode[map[string]any](t, env.Data); approved["estadocita"] != true {
		t.Fatalf("aprobar data = %v", approved)
	}

	invoiceBody := gin.H{"idusuariocita": assocID, "idmoneda": s.fx.Currency.ID}
	code, env = s.do(http.MethodPost, "/citas/admin/facturas/generar", s.admin, invoiceBody)
	if code != http.StatusCreated {
		t.Fatalf("generar: %d %+v", code, env)
	}
	invoice := decode[map[string]any](t, env.Data)
	if invoice["totalfactura"] != s.fx.Treatment.Price {
		t.Fatalf("invoice = %v", invoice)
	}
	invoiceID := uint(invoice["idfacturacita"].(float64))

	code, env = s.do(http.MethodPost, "/citas/admin/facturas/generar", s.admin, invoiceBody)
	if code != http.StatusConflict || env.IDFacturaCita == nil || *env.IDFacturaCita != invoiceID {
		t.Fatalf("second generar: %d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, "/citas/admin/calendario?fechaInicio=2024-05-01&fechaFin=2024-05-01", s.admin, nil)
	entries := decode[[]map[string]any](t, env.Data)
	if code != http.StatusOK || len(entries) != 1 || entries[0]["tiene_factura"] != true {
		t.Fatalf("calendario: %d %v", code, entries)
	}

	req := httptest.NewRequest(http.MethodGet, "/citas/admin/facturas/"+itoa(invoiceID)+"/pdf", nil)
	req.Header.Set("Authorization", "Bearer "+s.admin)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestBookingErrors(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing fields", gin.H{"idUsuario": s.fx.Client.ID}, http.StatusBadRequest},
		{"bad date", gin.H{"idUsuario": s.fx.Client.ID, "idTratamiento": s.fx.Treatment.ID, "fechaSolicitud": "01/05/2024", "horaSolicitud": "10:00"}, http.StatusBadRequest},
		{"unknown user", gin.H{"idUsuario": 999, "idTratamiento": s.fx.Treatment.ID, "fechaSolicitud": "2024-05-01", "horaSolicitud": "10:00"}, http.StatusNotFound},
		{"unknown treatment", gin.H{"idUsuario": s.fx.Client.ID, "idTratamiento": 999, "fechaSolicitud": "2024-05-01", "horaSolicitud": "10:00"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, env := s.do(http.MethodPost, "/citas/crear", "", tc.body); code != tc.want || env.OK {
				t.Fatalf("got %d %+v", code, env)
			}
		})
	}

	if code, _ := s.do(http.MethodPut, "/citas/admin/999/aprobar", s.admin, nil); code != http.StatusNotFound {
		t.Fatalf("approve unknown: %d", code)
	}
	if code, _ := s.do(http.MethodPut, "/citas/estado", "", gin.H{"idCita": 999, "nuevoEstado": true}); code != http.StatusNotFound {
		t.Fatalf("estado unknown: %d", code)
	}
	if code, _ := s.do(http.MethodPut, "/citas/estado", "", gin.H{"idCita": 1}); code != http.StatusBadRequest {
		t.Fatalf("estado without status: %d", code)
	}
}

func TestLegacyStatusUpdate(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodPost, "/citas/crear", "", gin.H{
		"idUsuario": s.fx.Client.ID, "idTratamiento": s.fx.Treatment.ID,
		"fechaSolicitud": "2024-05-01", "horaSolicitud": "10:00",
	})
	apptID := decode[map[string]any](t, env.Data)["idcita"]

	for _, status := range []any{true, false, "approved"} {
		code, env := s.do(http.MethodPut, "/citas/estado", "", gin.H{"idCita": apptID, "nuevoEstado": status})
		if code != http.StatusOK {
			t.Fatalf("estado %v: %d %+v", status, code, env)
		}
	}
	_, env = s.do(http.MethodGet, "/citas?estadoCita=true", "", nil)
	if rows := decode[[]map[string]any](t, env.Data); len(rows) != 1 || rows[0]["estado"] != "approved" {
		t.Fatalf("filtered list = %v", rows)
	}
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(http.MethodGet, "/citas/admin/pendientes", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/citas/admin/pendientes", "garbage", nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/citas/admin/pendientes", s.client, nil); code != http.StatusForbidden {
		t.Fatalf("client token: %d", code)
	}
	if code, _ := s.do(http.MethodPost, "/productos/admin", s.client, gin.H{"nombreProducto": "X", "precioProducto": 1}); code != http.StatusForbidden {
		t.Fatalf("client creating product: %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/tratamientos", "", nil); code != http.StatusOK {
		t.Fatalf("public catalog: %d", code)
	}
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	user, product := s.fx.Client.ID, s.fx.Product.ID

	code, _ := s.do(http.MethodPost, "/carrito/agregar", "", gin.H{"idCarrito": user, "idProducto": product, "cantidad": 2})
	if code != http.StatusCreated {
		t.Fatalf("first add: %d", code)
	}
	code, env := s.do(http.MethodPost, "/carrito/agregar", "", gin.H{"idCarrito": user, "idProducto": product, "cantidad": 3})
	if code != http.StatusOK {
		t.Fatalf("second add: %d", code)
	}
	if line := decode[map[string]any](t, env.Data); line["cantidadproducto"] != float64(5) {
		t.Fatalf("line = %v", line)
	}

	_, env = s.do(http.MethodGet, "/carrito/"+itoa(user), "", nil)
	cart := decode[models.CartView](t, env.Data)
	if len(cart.Items) != 1 || cart.Total != 5*s.fx.Product.Price {
		t.Fatalf("cart = %+v", cart)
	}

	if code, _ := s.do(http.MethodPut, "/carrito/cantidad", "", gin.H{"idCarrito": user, "idProducto": product, "nuevaCantidad": 0}); code != http.StatusBadRequest {
		t.Fatalf("quantity 0: %d", code)
	}
	if code, _ := s.do(http.MethodPut, "/carrito/cantidad", "", gin.H{"idCarrito": user, "idProducto": product, "nuevaCantidad": 1}); code != http.StatusOK {
		t.Fatalf("quantity 1: %d", code)
	}
	if code, _ := s.do(http.MethodDelete, "/carrito/quitar", "", gin.H{"idCarrito": user, "idProducto": product}); code != http.StatusOK {
		t.Fatalf("quitar: %d", code)
	}
	if code, _ := s.do(http.MethodDelete, "/carrito/quitar", "", gin.H{"idCarrito": user, "idProducto": product}); code != http.StatusNotFound {
		t.Fatalf("quitar twice: %d", code)
	}
	if code, _ := s.do(http.MethodDelete, "/carrito/vaciar", "", gin.H{"idCarrito": user}); code != http.StatusOK {
		t.Fatalf("vaciar: %d", code)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"nombre": "Marta", "apellido": "Solís", "telefono": "+50688882222",
		"nombreUsuario": "marta", "password": "clave123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}
	code, env := s.do(http.MethodPost, "/auth/login", "", gin.H{"nombreUsuario": "marta", "password": "clave123"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %+v", code, env)
	}
	login := decode[services.LoginResult](t, env.Data)
	if login.Role != models.RoleClient {
		t.Fatalf("login = %+v", login)
	}

	code, env = s.do(http.MethodGet, "/auth/me", login.Token, nil)
	if code != http.StatusOK || decode[map[string]any](t, env.Data)["nombreusuario"] != "marta" {
		t.Fatalf("me: %d %s", code, env.Data)
	}
	if code, _ := s.do(http.MethodPost, "/auth/login", "", gin.H{"nombreUsuario": "marta", "password": "x"}); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}

	code, env = s.do(http.MethodPost, "/auth/request-otp", "", gin.H{"telefono": "+50688882222"})
	otp := decode[services.OTPDelivery](t, env.Data)
	if code != http.StatusOK || !otp.DevMode || otp.Code == "" {
		t.Fatalf("request-otp: %d %+v", code, otp)
	}
	if code, _ := s.do(http.MethodPost, "/auth/verify-otp", "", gin.H{"telefono": "+50688882222", "otp": otp.Code}); code != http.StatusOK {
		t.Fatalf("verify-otp: %d", code)
	}
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func TestSendRemindersEndpoint(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodPost, "/citas/crear", "", gin.H{
		"idUsuario": s.fx.Client.ID, "idTratamiento": s.fx.Treatment.ID,
		"fechaSolicitud": "2024-05-01", "horaSolicitud": "10:00",
	})
	assocID := uint(decode[map[string]any](t, env.Data)["idusuariocita"].(float64))
	if code, _ := s.do(http.MethodPut, "/citas/admin/"+itoa(assocID)+"/aprobar", s.admin, nil); code != http.StatusOK {
		t.Fatalf("aprobar: %d", code)
	}

	code, env := s.do(http.MethodPost, "/citas/admin/recordatorios", s.admin, gin.H{"fecha": "2024-05-01"})
	if code != http.StatusOK {
		t.Fatalf("recordatorios: %d %+v", code, env)
	}
	if run := decode[map[string]any](t, env.Data); run["fecha"] != "2024-05-01" || run["enviados"] != float64(1) {
		t.Fatalf("run = %v", run)
	}

	// A second run for the same day skips what was already sent.
	_, env = s.do(http.MethodPost, "/citas/admin/recordatorios", s.admin, gin.H{"fecha": "2024-05-01"})
	if run := decode[map[string]any](t, env.Data); run["enviados"] != float64(0) {
		t.Fatalf("repeat run = %v", run)
	}

	// No body means tomorrow.
	code, env = s.do(http.MethodPost, "/citas/admin/recordatorios", s.admin, nil)
	if code != http.StatusOK {
		t.Fatalf("recordatorios without body: %d %+v", code, env)
	}
	if run := decode[map[string]any](t, env.Data); run["fecha"] == "" || run["enviados"] != float64(0) {
		t.Fatalf("default run = %v", run)
	}

	if code, _ := s.do(http.MethodPost, "/citas/admin/recordatorios", s.admin, gin.H{"fecha": "01/05/2024"}); code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodPost, "/citas/crear", "", gin.H{
		"idUsuario": s.fx.Client.ID, "idTratamiento": s.fx.Treatment.ID,
		"fechaSolicitud": "2024-05-01", "horaSolicitud": "10:00",
	})

	code, env := s.do(http.MethodGet, "/citas/admin/resumen", s.admin, nil)
	if code != http.StatusOK {
		t.Fatalf("resumen: %d %+v", code, env)
	}
	if summary := decode[services.Summary](t, env.Data); summary.Pending != 1 || summary.Approved != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if code, _ := s.do(http.MethodGet, "/citas/admin/resumen", s.client, nil); code != http.StatusForbidden {
		t.Fatalf("client token: %d", code)
	}
}

func (s *testServer) upload(field, filename string, content []byte, folder string) (int, envelope) {
	s.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			s.t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			s.t.Fatal(err)
		}
	}
	if folder != "" {
		if err := mw.WriteField("folder", folder); err != nil {
			s.t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		s.t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload/imagen", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.admin)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("upload: decode %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func TestUploadImageEndpoint(t *testing.T) {
	s := newTestServer(t)
	png, err := base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")
	if err != nil {
		t.Fatal(err)
	}

	code, env := s.upload("image", "a.png", png, "productos")
	if code != http.StatusOK {
		t.Fatalf("upload: %d %+v", code, env)
	}
	img := decode[services.UploadedImage](t, env.Data)
	if img.MimeType != "image/png" || img.Size != len(png) || img.URL != "https://img.example/salon/productos/x.png" {
		t.Fatalf("image = %+v", img)
	}

	cases := []struct {
		name    string
		field   string
		content []byte
	}{
		{"no file", "image", nil},
		{"wrong field", "foto", png},
		{"not an image", "image", []byte("hola, esto es texto")},
		{"over the size limit", "image", bytes.Repeat([]byte{0}, services.MaxImageSize+1)},
		{"body past the request cap", "image", bytes.Repeat([]byte{0}, services.MaxImageSize+2<<20)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, env := s.upload(tc.field, "a.png", tc.content, ""); code != http.StatusBadRequest || env.OK {
				t.Fatalf("got %d %+v", code, env)
			}
		})
	}
}

package routes

import (
	"time"

	"salon-backend/config"
	"salon-backend/controllers"
	"salon-backend/models"
	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries everything the handlers need.
type Deps struct {
	DB           *gorm.DB
	JWTSecret    string
	CORSOrigins  []string
	Appointments *services.AppointmentService
	Invoices     *services.InvoiceService
	Carts        *services.CartService
	Catalog      *services.CatalogService
	Products     *services.ProductService
	Auth         *services.AuthService
	Reports      *services.ReportService
	Reminders    *services.ReminderService
	Uploads      *services.UploadService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(config.RequestID())
	r.Use(config.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", config.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", config.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(config.PerformanceLogger())

	requireAuth := utils.AuthMiddleware(d.JWTSecret)
	adminOnly := []gin.HandlerFunc{requireAuth, utils.RequireRole(models.RoleAdmin)}

	r.GET("/health", controllers.Health(d.DB))

	authController := controllers.AuthController{Auth: d.Auth}
	auth := r.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/request-otp", authController.RequestOTP)
		auth.POST("/resend-otp", authController.RequestOTP)
		auth.POST("/verify-otp", authController.VerifyOTP)
		auth.POST("/request-password-reset-otp", authController.RequestPasswordReset)
		auth.POST("/reset-password", authController.ResetPassword)
		auth.GET("/roles", authController.Roles)
		auth.GET("/me", requireAuth, authController.Me)
	}

	appointmentController := controllers.AppointmentController{Appointments: d.Appointments}
	invoiceController := controllers.InvoiceController{Invoices: d.Invoices}
	reportController := controllers.ReportController{Reports: d.Reports}
	reminderController := controllers.ReminderController{Reminders: d.Reminders}
	citas := r.Group("/citas")
	{
		citas.POST("/crear", appointmentController.Create)
		citas.PUT("/estado", appointmentController.SetStatus)
		citas.GET("", appointmentController.List)
		citas.GET("/usuario/:idUsuario", appointmentController.ListByUser)

		admin := citas.Group("/admin", adminOnly...)
		{
			admin.GET("/pendientes", appointmentController.Pending)
			admin.PUT("/:idUsuarioCita/aprobar", appointmentController.Approve)
			admin.PUT("/:idUsuarioCita/rechazar", appointmentController.Reject)
			admin.GET("/calendario", appointmentController.Calendar)
			admin.GET("/resumen", reportController.Summary)
			admin.POST("/recordatorios", reminderController.Send)

			admin.POST("/facturas/generar", invoiceController.Generate)
			admin.GET("/facturas/:idFactura", invoiceController.Get)
			admin.GET("/facturas/:idFactura/pdf", invoiceController.PDF)
		}
	}

	cartController := controllers.CartController{Carts: d.Carts}
	carrito := r.Group("/carrito")
	{
		carrito.GET("/:idUsuario", cartController.Get)
		carrito.POST("/agregar", cartController.Add)
		carrito.PUT("/cantidad", cartController.SetQuantity)
		carrito.DELETE("/quitar", cartController.Remove)
		carrito.DELETE("/vaciar", cartController.Clear)
	}

	catalogController := controllers.CatalogController{Catalog: d.Catalog}
	tratamientos := r.Group("/tratamientos")
	{
		tratamientos.GET("", catalogController.ListTreatments)
		tratamientos.GET("/tipos", catalogController.ListCategories)
		tratamientos.GET("/tipo/:idTipo", catalogController.ListByCategory)
		tratamientos.GET("/:idTratamiento", catalogController.GetTreatment)

		admin := tratamientos.Group("/admin", adminOnly...)
		{
			admin.POST("/categorias", catalogController.CreateCategory)
			admin.PUT("/categorias/:idCategoria", catalogController.UpdateCategory)
			admin.DELETE("/categorias/:idCategoria", catalogController.DeleteCategory)
			admin.POST("", catalogController.CreateTreatment)
			admin.PUT("/:idTratamiento", catalogController.UpdateTreatment)
			admin.DELETE("/:idTratamiento", catalogController.DeleteTreatment)
		}
	}

	productController := controllers.ProductController{Products: d.Products}
	productos := r.Group("/productos")
	{
		productos.GET("", productController.List)
		productos.GET("/:idProducto", productController.Get)

		admin := productos.Group("/admin", adminOnly...)
		{
			admin.POST("", productController.Create)
			admin.PUT("/:idProducto", productController.Update)
			admin.DELETE("/:idProducto", productController.Delete)
		}
	}

	uploadController := controllers.UploadController{Uploads: d.Uploads}
	r.POST("/upload/imagen", append(adminOnly, uploadController.UploadImage)...)

	return r
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/encore/internal/config"
	"github.com/example/encore/internal/handlers"
	"github.com/example/encore/internal/middleware"
	"github.com/example/encore/internal/services"
)

// Services are the long-lived services shared by handlers and background tasks.
type Services struct {
	Telegram   *services.TelegramService
	Catalog    *services.CatalogService
	Carts      *services.CartStore
	Newsletter *services.NewsletterService
}

// NewServices builds the service layer.
func NewServices(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Services {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	catalogService := services.NewCatalogService(db)

	return &Services{
		Telegram:   telegramService,
		Catalog:    catalogService,
		Carts:      services.NewCartStore(db, catalogService, log, cfg.CartTTL),
		Newsletter: services.NewNewsletterService(db, telegramService, log),
	}
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger, svc *Services) {
	catalogHandler := handlers.NewCatalogHandler(db, svc.Catalog, log, cfg.StoreCurrency)
	productHandler := handlers.NewProductHandler(db, svc.Catalog, log, cfg.StoreCurrency)
	cartHandler := handlers.NewCartHandler(svc.Carts, cfg.CartTokenSecret, cfg.CartTTL, cfg.StoreCurrency)
	newsletterHandler := handlers.NewNewsletterHandler(db, svc.Newsletter)
	indexHandler := handlers.NewIndexHandler(db, svc.Catalog, svc.Carts, log, cfg.StoreCurrency)
	marketingHandler := handlers.NewMarketingHandler(db)
	settingsHandler := handlers.NewSettingsHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	admin := middleware.AdminOnly(cfg.AdminKey)

	api := app.Group("/api", middleware.CartSession(cfg.CartTokenSecret))

	// Pages
	api.Get("/index", indexHandler.Index)
	api.Get("/layout", indexHandler.Layout)

	// Catalog routes
	collections := api.Group("/collections")
	collections.Get("/", catalogHandler.ListCollections)
	collections.Post("/", admin, catalogHandler.CreateCollection)
	collections.Get("/:id", catalogHandler.GetCollection)
	collections.Put("/:id", admin, catalogHandler.UpdateCollection)
	collections.Delete("/:id", admin, catalogHandler.DeleteCollection)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Post("/", admin, productHandler.CreateProduct)
	products.Get("/:slug", productHandler.GetProduct)
	products.Get("/:slug/resolve", productHandler.ResolveProduct)
	products.Put("/:id", admin, productHandler.UpdateProduct)
	products.Delete("/:id", admin, productHandler.DeleteProduct)

	// Cart
	cart := api.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Delete("/", cartHandler.Clear)
	cart.Get("/badge", cartHandler.Badge)
	cart.Post("/lines", cartHandler.AddLine)
	cart.Put("/lines", cartHandler.UpdateLine)
	cart.Delete("/lines", cartHandler.RemoveLine)

	// Newsletter
	newsletter := api.Group("/newsletter")
	newsletter.Post("/subscribe", newsletterHandler.Subscribe)
	newsletter.Post("/unsubscribe", newsletterHandler.Unsubscribe)

	// Marketing resources
	api.Get("/banners", marketingHandler.ListHeroes)
	api.Post("/banners", admin, marketingHandler.CreateBanner)
	api.Put("/banners/:id", admin, marketingHandler.UpdateBanner)
	api.Delete("/banners/:id", admin, marketingHandler.DeleteBanner)

	api.Get("/settings", settingsHandler.GetSettings)
	api.Put("/settings", admin, settingsHandler.UpdateSettings)

	// Admin routes
	adminGroup := api.Group("/admin", admin)
	adminGroup.Get("/stats", adminHandler.DashboardStats)
	adminGroup.Get("/banners", marketingHandler.ListBanners)
	adminGroup.Get("/subscribers", adminHandler.ListSubscribers)
}

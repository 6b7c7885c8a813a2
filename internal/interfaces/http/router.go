package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/metascan/metascan-api/internal/application/audit"
	"github.com/metascan/metascan-api/internal/application/auth"
	"github.com/metascan/metascan-api/internal/application/usecase"
	"github.com/metascan/metascan-api/internal/domain/entity"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	AuthUC    *auth.UseCase
	UserUC    *usecase.UserUseCase
	CavUC     *audit.CavaleteUseCase
	SlotUC    *audit.SlotUseCase
	HistoryUC *audit.HistoryUseCase
	ExportUC  *audit.ExportUseCase
	Lookup    audit.ProductLookup
	JWTSecret string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Users (admin)
	users := protected.Group("/users", RequireRole(entity.RoleAdmin))
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Cavaletes (autorização fina dentro do caso de uso)
	cavaletes := protected.Group("/cavaletes")
	cavaleteHandler := NewCavaleteHandler(deps.CavUC, deps.ExportUC)
	cavaletes.Get("/export", cavaleteHandler.Export)
	cavaletes.Post("/assign", cavaleteHandler.BulkAssign)
	cavaletes.Get("/", cavaleteHandler.List)
	cavaletes.Post("/", cavaleteHandler.Create)
	cavaletes.Get("/:id", cavaleteHandler.GetByID)
	cavaletes.Put("/:id", cavaleteHandler.Update)
	cavaletes.Delete("/:id", cavaleteHandler.Delete)
	cavaletes.Post("/:id/assign-user", cavaleteHandler.AssignUser)
	cavaletes.Post("/:id/block", cavaleteHandler.Block)
	cavaletes.Post("/:id/unblock", cavaleteHandler.Unblock)

	// Slots: edição gated e ações do fluxo de conferência
	slots := protected.Group("/slots")
	slotHandler := NewSlotHandler(deps.SlotUC)
	slots.Post("/start-all", slotHandler.StartAll)
	slots.Post("/finish-all", slotHandler.FinishAll)
	slots.Post("/approve-all", slotHandler.ApproveAll)
	slots.Post("/reopen-all", slotHandler.ReopenAll)
	slots.Get("/:id", slotHandler.GetByID)
	slots.Put("/:id", slotHandler.Update)
	slots.Post("/:id/start-confirmation", slotHandler.StartAudit)
	slots.Post("/:id/finish-confirmation", slotHandler.FinishAudit)
	slots.Post("/:id/approve-confirmation", slotHandler.Approve)
	slots.Post("/:id/return-confirmation", slotHandler.Return)
	slots.Post("/:id/reopen-confirmation", slotHandler.Reopen)

	// Histórico (gestor/admin; reforçado no caso de uso)
	history := protected.Group("/history", RequireRole(entity.RoleManager, entity.RoleAdmin))
	historyHandler := NewHistoryHandler(deps.HistoryUC)
	history.Get("/cavaletes", historyHandler.ListCavaletes)
	history.Get("/slots", historyHandler.ListSlots)

	// Produtos (proxy Sankhya)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Lookup)
	products.Get("/:code", productHandler.GetByCode)
}

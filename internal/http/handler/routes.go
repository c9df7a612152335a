package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/http/middleware"
	"smartstudy/internal/model"
	"smartstudy/internal/service"
	"smartstudy/internal/storage"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Users       service.UserService
	Departments service.DepartmentService
	Subjects    service.SubjectService
	Notes       service.MaterialService
	PYQs        service.MaterialService
	Syllabus    service.MaterialService
	Settings    service.SettingsService
	Subscribers service.SubscriberService
	Admin       service.AdminService
	Predict     service.PredictService
}

// Deps is everything RegisterRoutes wires together.
type Deps struct {
	DB          Pinger
	Store       storage.Storage
	Guard       *middleware.AuthGuard
	APIBasePath string
	// PresignTTL > 0 serves uploads by redirecting to presigned storage URLs.
	PresignTTL time.Duration
	Services
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; rules live in the service layer.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/"+storage.UploadPrefix+"/*", ServeUpload(d.Store, d.PresignTTL))

	api := app.Group(d.APIBasePath)
	authn := d.Guard.Authenticate()
	admin := d.Guard.AdminOnly()

	users := api.Group("/users")
	users.Post("/register", Register(d.Users))
	users.Post("/login", Login(d.Users))
	users.Get("/profile", authn, Profile(d.Users))
	users.Get("/", admin, ListUsers(d.Users))
	users.Put("/:id", admin, UpdateUser(d.Users))
	users.Delete("/:id", admin, DeleteUser(d.Users))

	departments := api.Group("/departments")
	departments.Get("/", ListDepartments(d.Departments))
	departments.Get("/:id", GetDepartment(d.Departments))
	departments.Post("/", admin, CreateDepartment(d.Departments))
	departments.Put("/:id", admin, UpdateDepartment(d.Departments))
	departments.Delete("/:id", admin, DeleteDepartment(d.Departments))

	subjects := api.Group("/subjects")
	subjects.Get("/", ListSubjects(d.Subjects))
	subjects.Get("/:id", GetSubject(d.Subjects))
	subjects.Post("/", admin, CreateSubject(d.Subjects))
	subjects.Put("/:id", admin, UpdateSubject(d.Subjects))
	subjects.Delete("/:id", admin, DeleteSubject(d.Subjects))

	collections := []struct {
		path   string
		module string
		svc    service.MaterialService
	}{
		{"/notes", model.ModuleNotes, d.Notes},
		{"/pyqs", model.ModulePYQs, d.PYQs},
		{"/syllabus", model.ModuleSyllabus, d.Syllabus},
	}
	for _, col := range collections {
		g := api.Group(col.path, middleware.RequireModule(d.Settings, col.module))
		g.Get("/", ListMaterials(col.svc))
		g.Get("/:id", GetMaterial(col.svc))
		g.Post("/", admin, CreateMaterial(col.svc))
		g.Put("/:id", admin, UpdateMaterial(col.svc))
		g.Delete("/:id", admin, DeleteMaterial(col.svc))
	}

	api.Post("/subscribe", Subscribe(d.Subscribers))

	adminGroup := api.Group("/admin", admin)
	adminGroup.Get("/stats", Stats(d.Admin))
	adminGroup.Get("/settings", GetSettings(d.Settings))
	adminGroup.Put("/settings", UpdateSettings(d.Settings))
	adminGroup.Get("/users", ListUsers(d.Users))
	adminGroup.Delete("/users/:id", DeleteUser(d.Users))

	api.Post("/predict", middleware.RequireModule(d.Settings, model.ModulePredictor), Predict(d.Predict))
}

package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/qyinm/offtui/config"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg config.WebConfig, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger.Named("http")))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	router.SetHTMLTemplate(loadTemplates())

	router.GET("/healthz", handler.HealthCheck)
	router.GET("/", handler.Index)
	router.GET("/product/:barcode", handler.Product)

	api := router.Group("/api")
	{
		api.GET("/products", handler.ListProducts)
		api.GET("/categories", handler.ListCategories)
	}

	return router
}

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"gradeClass": gradeClass,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// gradeClass maps a grade label to a CSS class.
func gradeClass(label string) string {
	switch label {
	case "A", "B", "C", "D", "E":
		return "grade-" + label
	default:
		return "grade-none"
	}
}

package routers

import (
	"intake-service/internal/app/delivery/http/controllers"
	"intake-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachTemplateRoutes(router chi.Router, middlewares *middlewares.Middlewares, templateController *controllers.TemplateController) {
	router.With(middlewares.Authenticate).Post("/{template_id}/editor-sessions", templateController.OpenEditorSession)
	router.With(middlewares.Authenticate).Get("/{template_id}/variants/{visit_type}", templateController.FindTemplateVariant)
}

func attachEditorSessionRoutes(router chi.Router, middlewares *middlewares.Middlewares, uploadLimiter *middlewares.RateLimiter, templateController *controllers.TemplateController) {
	router.With(middlewares.Authenticate).Get("/{session_id}", templateController.FindEditorSession)
	router.With(middlewares.Authenticate).Post("/{session_id}/operations", templateController.ApplyEditorOperation)
	router.With(middlewares.Authenticate).Post("/{session_id}/save", templateController.SaveEditorSession)
	router.With(middlewares.Authenticate).Delete("/{session_id}", templateController.CloseEditorSession)
	router.With(middlewares.Authenticate, uploadLimiter.Limit).Post("/{session_id}/items/{item_id}/image", templateController.UploadItemImage)
}

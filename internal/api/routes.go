package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/presets", h.presetsHandler)
		api.POST("/presets/filter", h.filterHandler)
		api.GET("/fonts", h.fontsHandler)
		api.GET("/qr", qrHandler)
		api.POST("/render", h.renderStateless)

		plans := api.Group("/plans")
		plans.POST("", h.createPlan)
		plans.GET("/:id", h.getPlan)
		plans.DELETE("/:id", h.deletePlan)
		plans.GET("/:id/caption", h.getCaption)
		plans.PUT("/:id/caption", h.setCaption)
		plans.GET("/:id/export.txt", h.exportText)
		plans.POST("/:id/render", h.renderPlan)

		slides := plans.Group("/:id/slides")
		slides.POST("", h.addSlide)
		slides.PATCH("/:slideID", h.patchSlide)
		slides.DELETE("/:slideID", h.deleteSlide)
		slides.POST("/:slideID/render", h.renderSlide)
		slides.POST("/:slideID/images", h.addImages)
		slides.POST("/:slideID/images/move", h.moveImage)
		slides.DELETE("/:slideID/images/:index", h.deleteImage)
		slides.PUT("/:slideID/stickers/:side", h.setSticker)
		slides.DELETE("/:slideID/stickers/:side", h.clearSticker)
	}
}

package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/certificados-api/internal/adapter/api/controller"
	"github.com/hugohenrick/certificados-api/pkg/auth"
)

// SetupCertificateRoutes configura as rotas do módulo de certificados.
// Listagem, busca e download são públicos; todas as operações de escrita e as
// leituras administrativas exigem autenticação, e a exclusão total exige o
// papel admin.
func SetupCertificateRoutes(router *gin.RouterGroup, certificateController *controller.CertificateController) {
	public := router.Group("/certificates")
	{
		public.GET("", certificateController.List)
		public.GET("/search", certificateController.Search)
		public.GET("/download/:id", certificateController.Download)
	}

	protected := router.Group("/certificates")
	protected.Use(auth.JWTAuthMiddleware())
	{
		protected.POST("", certificateController.Create)
		protected.PUT("/:id", certificateController.Replace)
		protected.DELETE("/:id", certificateController.Delete)
		protected.DELETE("/student/:studentId", certificateController.DeleteByStudent)
		protected.GET("/stats", certificateController.Stats)
		protected.GET("/trends/daily", certificateController.DailyTrend)
		protected.GET("/trends/monthly", certificateController.MonthlyTrend)
		protected.GET("/storage/health", certificateController.StorageHealth)

		protected.DELETE("", auth.RoleAuthMiddleware("admin"), certificateController.DeleteAll)
	}
}

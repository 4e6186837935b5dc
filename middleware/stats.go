package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoforge/stats"
)

// AnalysisTargetKey is the context key handlers set to the analysed URL
const AnalysisTargetKey = "analysis_target"

// Stats tracks visitors on every request and latency for POSTs to analysisPaths
func Stats(requestStats *stats.RequestStats, analysisPaths ...string) gin.HandlerFunc {
	tracked := make(map[string]bool, len(analysisPaths))
	for _, p := range analysisPaths {
		tracked[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestStats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.Method != http.MethodPost || !tracked[c.FullPath()] {
			return
		}
		loadTime := float64(time.Since(start).Milliseconds())
		requestStats.TrackAnalysis(c.GetString(AnalysisTargetKey), loadTime, c.Writer.Status() >= 400)
	}
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/volgapavel/parsAZ/internal/server/middleware"
	storepgx "github.com/volgapavel/parsAZ/pkg/store/pgx"
)

// GetArticleCountHandler reports the size of the stored article corpus.
func GetArticleCountHandler(c echo.Context) error {
	type getArticleCountResponse struct {
		Message  string `json:"message"`
		Articles int    `json:"articles,omitempty"`
	}

	conn := c.(*middleware.AppContext).App.DBConn
	if conn == nil {
		return c.JSON(http.StatusServiceUnavailable, getArticleCountResponse{
			Message: "Database not available",
		})
	}

	count, err := storepgx.NewArticleStore(conn).CountArticles(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getArticleCountResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getArticleCountResponse{
		Message:  "OK",
		Articles: count,
	})
}

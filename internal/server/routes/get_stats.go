package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/volgapavel/parsAZ/internal/server/middleware"
	"github.com/volgapavel/parsAZ/pkg/search"
)

// GetTopPersonsHandler ranks indexed persons by connectivity.
func GetTopPersonsHandler(c echo.Context) error {
	type getTopPersonsParams struct {
		TopK int `query:"top_k"`
	}

	type getTopPersonsResponse struct {
		Message string                 `json:"message"`
		Persons []search.PersonSummary `json:"persons"`
	}

	params := new(getTopPersonsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getTopPersonsResponse{
			Message: "Invalid request params",
		})
	}
	if params.TopK <= 0 {
		params.TopK = 20
	}

	s := c.(*middleware.AppContext).App.Index.Search()
	if s == nil {
		return c.JSON(http.StatusServiceUnavailable, getTopPersonsResponse{
			Message: "Index not loaded",
		})
	}

	persons := s.TopPersons(params.TopK)
	if persons == nil {
		persons = []search.PersonSummary{}
	}
	return c.JSON(http.StatusOK, getTopPersonsResponse{
		Message: "OK",
		Persons: persons,
	})
}

// GetStatsHandler summarizes the whole index.
func GetStatsHandler(c echo.Context) error {
	type getStatsResponse struct {
		Message string              `json:"message"`
		Stats   *search.GlobalStats `json:"stats,omitempty"`
	}

	s := c.(*middleware.AppContext).App.Index.Search()
	if s == nil {
		return c.JSON(http.StatusServiceUnavailable, getStatsResponse{
			Message: "Index not loaded",
		})
	}

	stats := s.Stats()
	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "OK",
		Stats:   &stats,
	})
}

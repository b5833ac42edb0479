package routes

import (
	"net/http"
	"strings"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/volgapavel/parsAZ/internal/server/middleware"
	"github.com/volgapavel/parsAZ/pkg/graph"
	"github.com/volgapavel/parsAZ/pkg/search"
)

// FindPersonsHandler resolves a free-text query to indexed persons.
func FindPersonsHandler(c echo.Context) error {
	type findPersonsParams struct {
		Query string `query:"q" validate:"required"`
		TopK  int    `query:"top_k"`
	}

	type findPersonsResponse struct {
		Message string         `json:"message"`
		Matches []search.Match `json:"matches"`
	}

	params := new(findPersonsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, findPersonsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, findPersonsResponse{
			Message: "Invalid request params",
		})
	}

	s := c.(*middleware.AppContext).App.Index.Search()
	if s == nil {
		return c.JSON(http.StatusServiceUnavailable, findPersonsResponse{
			Message: "Index not loaded",
		})
	}

	matches := s.FindPerson(params.Query, params.TopK)
	if matches == nil {
		matches = []search.Match{}
	}
	return c.JSON(http.StatusOK, findPersonsResponse{
		Message: "OK",
		Matches: matches,
	})
}

// GetPersonHandler returns the full profile card for one person.
func GetPersonHandler(c echo.Context) error {
	type getPersonParams struct {
		PersonKey string  `param:"key" validate:"required"`
		TopN      int     `query:"top_n"`
		MinNLI    float64 `query:"min_nli"`
	}

	type getPersonResponse struct {
		Message string             `json:"message"`
		Person  *search.PersonCard `json:"person,omitempty"`
	}

	params := new(getPersonParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getPersonResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getPersonResponse{
			Message: "Invalid request params",
		})
	}
	if params.MinNLI <= 0 {
		params.MinNLI = graph.DefaultConfig().NLIThreshold
	}

	s := c.(*middleware.AppContext).App.Index.Search()
	if s == nil {
		return c.JSON(http.StatusServiceUnavailable, getPersonResponse{
			Message: "Index not loaded",
		})
	}

	card := s.Card(params.PersonKey, params.TopN, params.MinNLI)
	if card == nil {
		return c.JSON(http.StatusNotFound, getPersonResponse{
			Message: "Person not found",
		})
	}
	return c.JSON(http.StatusOK, getPersonResponse{
		Message: "OK",
		Person:  card,
	})
}

// GetNeighborsHandler lists a person's neighbor edges.
func GetNeighborsHandler(c echo.Context) error {
	type getNeighborsParams struct {
		PersonKey  string `param:"key" validate:"required"`
		SortBy     string `query:"sort_by"`
		TopN       int    `query:"top_n"`
		Types      string `query:"types"`
		MinSupport int    `query:"min_support"`
	}

	type getNeighborsResponse struct {
		Message   string                `json:"message"`
		Neighbors []search.NeighborView `json:"neighbors"`
	}

	params := new(getNeighborsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getNeighborsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getNeighborsResponse{
			Message: "Invalid request params",
		})
	}

	s := c.(*middleware.AppContext).App.Index.Search()
	if s == nil {
		return c.JSON(http.StatusServiceUnavailable, getNeighborsResponse{
			Message: "Index not loaded",
		})
	}

	query := search.NeighborQuery{
		SortBy:             params.SortBy,
		TopN:               params.TopN,
		MinSupportArticles: params.MinSupport,
	}
	if params.Types != "" {
		for _, t := range strings.Split(params.Types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				query.Types = append(query.Types, t)
			}
		}
	}

	neighbors := s.Neighbors(params.PersonKey, query)
	if neighbors == nil {
		neighbors = []search.NeighborView{}
	}
	return c.JSON(http.StatusOK, getNeighborsResponse{
		Message:   "OK",
		Neighbors: neighbors,
	})
}

// GetRelationsHandler lists a person's neighbors remapped onto relation
// verbs.
func GetRelationsHandler(c echo.Context) error {
	type getRelationsParams struct {
		PersonKey string  `param:"key" validate:"required"`
		MinNLI    float64 `query:"min_nli"`
		TopN      int     `query:"top_n"`
	}

	type getRelationsResponse struct {
		Message   string                    `json:"message"`
		Relations []search.SemanticRelation `json:"relations"`
	}

	params := new(getRelationsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getRelationsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getRelationsResponse{
			Message: "Invalid request params",
		})
	}
	if params.MinNLI <= 0 {
		params.MinNLI = graph.DefaultConfig().NLIThreshold
	}

	s := c.(*middleware.AppContext).App.Index.Search()
	if s == nil {
		return c.JSON(http.StatusServiceUnavailable, getRelationsResponse{
			Message: "Index not loaded",
		})
	}

	relations := s.SemanticRelations(params.PersonKey, params.MinNLI, params.TopN)
	if relations == nil {
		relations = []search.SemanticRelation{}
	}
	return c.JSON(http.StatusOK, getRelationsResponse{
		Message:   "OK",
		Relations: relations,
	})
}

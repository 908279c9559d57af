package server

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/errandlabs/errand/internal/agent/core"
)

// ModelsHandler lists the models the configured provider can route to.
type ModelsHandler struct {
	LLM core.LLMProvider
}

// Register mounts the models endpoint on the API group.
func (h *ModelsHandler) Register(g *echo.Group) {
	g.GET("/models", h.list)
}

func (h *ModelsHandler) list(c echo.Context) error {
	names := h.LLM.GetAvailableModels()
	sort.Strings(names)

	out := make([]core.ModelInfo, 0, len(names))
	for _, name := range names {
		info, err := h.LLM.GetModelInfo(name)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

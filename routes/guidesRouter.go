package routes

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/voicebridge/apiv1/utils"
)

func (h *Handler) ListGuides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := h.guides.Filter(strings.TrimSpace(q.Get("category")), strings.TrimSpace(q.Get("difficulty")))
	writeSuccess(w, http.StatusOK, envelope{"data": list, "count": len(list)})
}

func (h *Handler) GetGuide(w http.ResponseWriter, r *http.Request) {
	guide, ok := h.guides.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, utils.GUIDE_NOT_FOUND_ERROR)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": guide})
}

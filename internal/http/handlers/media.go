package handlers

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
)

// MediaHandler serves uploaded attachments to signed-in users. Admins see
// everything; members see the UPI QR code and their own files.
type MediaHandler struct {
	deps *Deps
}

func NewMediaHandler(deps *Deps) *MediaHandler {
	return &MediaHandler{deps: deps}
}

func (h *MediaHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /media/{path...}", h.deps.Guard.Any(h.serve))
}

func (h *MediaHandler) serve(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+r.PathValue("path")), "/")
	file, err := h.deps.Uploads.Resolve(rel)
	if err != nil {
		respond.NotFound(w, "file not found")
		return
	}
	allowed, err := h.visible(r, rel)
	if err != nil {
		h.deps.internalError(w, r, "failed to check file access", err)
		return
	}
	if !allowed {
		respond.NotFound(w, "file not found")
		return
	}
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		respond.NotFound(w, "file not found")
		return
	}
	http.ServeFile(w, r, file)
}

func (h *MediaHandler) visible(r *http.Request, rel string) (bool, error) {
	acct := actor(r)
	if acct.Profile == nil {
		return false, nil
	}
	if acct.Profile.Role == models.RoleAdmin {
		return true, nil
	}
	kind, _, _ := strings.Cut(rel, "/")
	switch kind {
	case uploads.KindUPIQR:
		return true, nil
	case uploads.KindAvatar:
		return acct.Profile.AvatarPath == rel, nil
	case uploads.KindPaymentProof:
		payments, err := h.deps.Store.ListPayments(r.Context(), models.PaymentFilter{AccountID: acct.ID})
		if err != nil {
			return false, err
		}
		for _, p := range payments {
			if p.ProofPath == rel {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

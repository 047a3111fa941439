package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/service"
)

func (h *Handler) verifySubmission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*config.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(config.MaxMultipartMemory); err != nil {
		respond(w, http.StatusBadRequest, false, "invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := service.SubmitRequest{
		TaskID: r.FormValue("taskId"),
		UserID: r.FormValue("userId"),
	}
	var err error
	if req.Image, req.ImageName, err = formFile(r, "image"); err != nil {
		writeError(w, r, err)
		return
	}
	if req.GroupImage, req.GroupImageName, err = formFile(r, "group_image"); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.submissions.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			respond(w, http.StatusOK, false, "This user has already completed the task.",
				map[string]string{"status": string(domain.SubmissionAlreadyDone)})
			return
		}
		writeError(w, r, err)
		return
	}

	switch {
	case out.Status == domain.SubmissionAccepted:
		respond(w, http.StatusOK, true, "Image verified successfully.", map[string]any{
			"status":               out.Status,
			"matched_link":         out.Submission.MatchedLink,
			"group_name":           out.Recipients.ListName,
			"participant_count":    out.Recipients.ParticipantCount,
			"verification_details": out.Broadcast,
			"balance":              out.Balance,
		})
	case out.OracleUnavailable():
		respond(w, http.StatusInternalServerError, false, "verification service unavailable, try again later", map[string]any{
			"status":               out.Status,
			"reason":               out.Reason,
			"participant_check":    out.Recipients,
			"verification_details": out.Broadcast,
		})
	case out.Reason == service.ReasonInsufficientRecipients:
		msg := "Broadcast list is not valid."
		if out.Recipients != nil && out.Recipients.Reason != "" {
			msg = out.Recipients.Reason
		}
		respond(w, http.StatusOK, false, msg, map[string]any{
			"status":            out.Status,
			"reason":            out.Reason,
			"participant_check": out.Recipients,
		})
	default:
		respond(w, http.StatusOK, false, "No matching link found in the broadcast message screenshot", map[string]any{
			"status":               out.Status,
			"reason":               out.Reason,
			"participant_check":    out.Recipients,
			"verification_details": out.Broadcast,
		})
	}
}

// formFile reads one uploaded file. A missing part yields empty data so
// the service reports which evidence is missing.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", domain.Invalid("read %s: %v", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, config.MaxImageBytes+1))
	if err != nil {
		return nil, "", domain.Invalid("read %s: %v", field, err)
	}
	return data, hdr.Filename, nil
}

package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datasweeper/internal/analysis"
	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/KaramelBytes/datasweeper/internal/logging"
	"github.com/KaramelBytes/datasweeper/internal/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// handleConvert runs one uploaded file through the pipeline and returns the
// converted file as an attachment.
//
// Form fields: file (required), to, clean, dedupe, fill_missing, columns,
// sheet.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	file, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	c, err := controlsFromForm(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := session.Open(file, s.loaderOptions(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	sess.Controls = c
	sess.Controls.Columns = nil
	applied := sess.ApplyCleaning()
	if len(c.Columns) > 0 {
		if err := sess.SelectColumns(c.Columns); err != nil {
			respondError(w, r, err)
			return
		}
	}
	res, err := sess.Convert()
	if err != nil {
		respondError(w, r, err)
		return
	}

	log := logging.WithFields(r.Context(), "file", file.Name, "session", sess.ID.String())
	for _, st := range applied {
		log.Info(st.Message())
	}
	log.Info("converted", "output", res.FileName, "bytes", len(res.Data))

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Session-Id", sess.ID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// previewResponse is the JSON reply of /api/preview.
type previewResponse struct {
	*analysis.Report
	Chart string `json:"chart,omitempty"`
}

// handlePreview returns the summary of an uploaded file as JSON. Optional
// fields: rows (sample rows), chart, sheet.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	opt := analysis.DefaultOptions()
	if v := r.FormValue("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, &badRequest{msg: fmt.Sprintf("invalid rows: %q", v)})
			return
		}
		opt.SampleRows = n
	}
	showChart, err := formBool(r, "chart")
	if err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := session.Open(file, s.loaderOptions(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	resp := previewResponse{Report: sess.Summary(opt)}
	if showChart {
		sess.Controls.ShowChart = true
		if out, err := sess.Chart(s.opts.ChartWidth); err == nil {
			resp.Chart = out
		}
	}
	writeJSON(w, r, resp)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (session.UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		return session.UploadedFile{}, &badRequest{msg: "file too large or invalid form"}
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return session.UploadedFile{}, &badRequest{msg: "no file provided"}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return session.UploadedFile{}, fmt.Errorf("read upload: %w", err)
	}
	return session.NewUploadedFile(header.Filename, data), nil
}

func (s *Server) loaderOptions(r *http.Request) loader.Options {
	if v := strings.TrimSpace(r.FormValue("sheet")); v != "" {
		return loader.Options{Sheet: v}
	}
	return loader.Options{Sheet: s.opts.Sheet}
}

func controlsFromForm(r *http.Request) (session.Controls, error) {
	var c session.Controls
	var err error
	if v := r.FormValue("to"); v != "" {
		if c.Target, err = export.ParseTarget(v); err != nil {
			return c, &badRequest{msg: err.Error()}
		}
	}
	if c.Clean, err = formBool(r, "clean"); err != nil {
		return c, err
	}
	if c.RemoveDuplicates, err = formBool(r, "dedupe"); err != nil {
		return c, err
	}
	if c.FillMissing, err = formBool(r, "fill_missing"); err != nil {
		return c, err
	}
	// dedupe and fill_missing imply clean
	if c.RemoveDuplicates || c.FillMissing {
		c.Clean = true
	}
	c.Columns = splitColumns(r.FormValue("columns"))
	return c, nil
}

func formBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.FormValue(name))
	switch strings.ToLower(v) {
	case "":
		return false, nil
	case "on", "yes":
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &badRequest{msg: fmt.Sprintf("invalid %s: %q", name, v)}
	}
	return b, nil
}

func splitColumns(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

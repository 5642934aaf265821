package middleware

import "net/http"

// recorder captures the status code and body size written by a handler.
type recorder struct {
	http.ResponseWriter
	status int
	size   int
}

func newRecorder(w http.ResponseWriter) *recorder {
	if rec, ok := w.(*recorder); ok {
		return rec
	}
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

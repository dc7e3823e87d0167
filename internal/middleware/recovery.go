package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicRecorder は回復したpanicの件数を記録するインターフェース。
type PanicRecorder interface {
	RecordPanic(route string)
}

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぐミドルウェアを生成する。
// APIクライアントには統一フォーマットの500を、ブラウザにはエラービューへのリダイレクトを返す。
// recorderはnilでもよい。
func NewRecoveryMiddleware(recorder PanicRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)
				if recorder != nil {
					recorder.RecordPanic(routePattern(r))
				}
				WriteInternalServerError(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package inbound

import "net/http"

// NewRouter mounts the install endpoint at / and the delivery endpoint
// at /webhook.
func NewRouter(install *InstallHandler, webhook *WebhookHandler) *http.ServeMux {
	mux := http.NewServeMux()
	if install != nil {
		mux.Handle("/", install)
	}
	if webhook != nil {
		mux.Handle("/webhook", webhook)
	}
	return mux
}

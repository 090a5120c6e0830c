package router

import (
	"net/http"

	"bid2/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)

	mux.HandleFunc("POST /api/rfqs/structure", c.StructureRFQ)
	mux.HandleFunc("POST /api/rfqs/new", c.NewRFQ)
	mux.HandleFunc("GET /api/rfqs/my", c.MyRFQs)
	mux.HandleFunc("GET /api/rfqs/inbox", c.Inbox)
	mux.HandleFunc("GET /api/rfqs/{rfqId}", c.GetRFQ)
	mux.HandleFunc("POST /api/rfqs/{rfqId}/send", c.SendRFQ)
	mux.HandleFunc("POST /api/rfqs/{rfqId}/select", c.SelectBid)
	mux.HandleFunc("POST /api/rfqs/{rfqId}/recommendation", c.Recommend)

	mux.HandleFunc("POST /api/rfqs/{rfqId}/bids", c.NewBid)
	mux.HandleFunc("GET /api/rfqs/{rfqId}/bids", c.RFQBids)
	mux.HandleFunc("GET /api/rfqs/{rfqId}/bids/my", c.MyBid)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id, X-User-Role, X-Supplier-Onboarded")
		w.Header().Set("Accept", "*/*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return cors
}

package rpc

import (
	"log/slog"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/batchledger/batchledger/observability"
	"github.com/batchledger/batchledger/transfer"
)

type (
	// TransferAPI exposes the transfer engine's public read accessors.
	TransferAPI struct {
		engine *transfer.Engine
		log    *slog.Logger
	}

	transferStatsResponse struct {
		TotalBatches            uint64   `json:"totalBatches"`
		TotalTransfersProcessed uint64   `json:"totalTransfersProcessed"`
		TotalVolumeTransferred  *big.Int `json:"totalVolumeTransferred"`
	}

	adminResponse struct {
		Admin string `json:"admin"`
	}
)

func NewTransferAPI(engine *transfer.Engine, observe observability.Observability) *TransferAPI {
	return &TransferAPI{engine: engine, log: observe.Logger()}
}

func (api *TransferAPI) Register(r *mux.Router) {
	sub := r.PathPrefix("/transfer").Subrouter()
	sub.HandleFunc("/admin", api.getAdmin).Methods("GET", "OPTIONS")
	sub.HandleFunc("/stats", api.getStats).Methods("GET", "OPTIONS")
}

func (api *TransferAPI) getAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := api.engine.Admin(r.Context())
	if err != nil {
		writeError(w, api.log, http.StatusInternalServerError, err)
		return
	}
	writeResponse(w, api.log, http.StatusOK, adminResponse{Admin: admin.String()})
}

func (api *TransferAPI) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.engine.Stats(r.Context())
	if err != nil {
		writeError(w, api.log, http.StatusInternalServerError, err)
		return
	}
	writeResponse(w, api.log, http.StatusOK, transferStatsResponse{
		TotalBatches:            stats.TotalBatches,
		TotalTransfersProcessed: stats.TotalTransfersProcessed,
		TotalVolumeTransferred:  stats.TotalVolumeTransferred,
	})
}

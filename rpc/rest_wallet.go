package rpc

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/batchledger/batchledger/observability"
	"github.com/batchledger/batchledger/types"
	"github.com/batchledger/batchledger/wallet"
)

type (
	// WalletAPI exposes the wallet engine's public read accessors.
	WalletAPI struct {
		engine *wallet.Engine
		log    *slog.Logger
	}

	walletStatsResponse struct {
		TotalBatches        uint64 `json:"totalBatches"`
		TotalWalletsCreated uint64 `json:"totalWalletsCreated"`
	}

	walletResponse struct {
		Owner string `json:"owner"`
		ID    uint64 `json:"id"`
	}
)

func NewWalletAPI(engine *wallet.Engine, observe observability.Observability) *WalletAPI {
	return &WalletAPI{engine: engine, log: observe.Logger()}
}

func (api *WalletAPI) Register(r *mux.Router) {
	sub := r.PathPrefix("/wallet").Subrouter()
	sub.HandleFunc("/admin", api.getAdmin).Methods("GET", "OPTIONS")
	sub.HandleFunc("/stats", api.getStats).Methods("GET", "OPTIONS")
	sub.HandleFunc("/wallets/{owner}", api.getWallet).Methods("GET", "OPTIONS")
}

func (api *WalletAPI) getAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := api.engine.Admin(r.Context())
	if err != nil {
		writeError(w, api.log, http.StatusInternalServerError, err)
		return
	}
	writeResponse(w, api.log, http.StatusOK, adminResponse{Admin: admin.String()})
}

func (api *WalletAPI) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.engine.Stats(r.Context())
	if err != nil {
		writeError(w, api.log, http.StatusInternalServerError, err)
		return
	}
	writeResponse(w, api.log, http.StatusOK, walletStatsResponse{
		TotalBatches:        stats.TotalBatches,
		TotalWalletsCreated: stats.TotalWalletsCreated,
	})
}

func (api *WalletAPI) getWallet(w http.ResponseWriter, r *http.Request) {
	owner, err := types.ParseAddress(mux.Vars(r)["owner"])
	if err != nil {
		writeError(w, api.log, http.StatusBadRequest, err)
		return
	}
	wlt, err := api.engine.GetWallet(r.Context(), owner)
	if err != nil {
		writeError(w, api.log, http.StatusInternalServerError, err)
		return
	}
	if wlt == nil {
		writeError(w, api.log, http.StatusNotFound, errors.New("wallet does not exist"))
		return
	}
	writeResponse(w, api.log, http.StatusOK, walletResponse{Owner: wlt.Owner.String(), ID: wlt.ID})
}

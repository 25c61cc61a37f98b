// Copyright 2025 Tokenlens
//
// NFT analysis API handlers

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tokenlens/tokenlens/pkg/database"
	"github.com/tokenlens/tokenlens/pkg/ethereum"
	"github.com/tokenlens/tokenlens/pkg/inspector"
)

// AnalysisHandlers provides HTTP handlers for inspection operations.
type AnalysisHandlers struct {
	inspector      *inspector.Inspector
	store          *database.Store
	defaultChainID uint64
	logger         *logrus.Logger
}

// NewAnalysisHandlers creates the analysis handlers. The store is optional;
// without it analyze requests run a fresh inspection and stored-analysis
// reads answer 404.
func NewAnalysisHandlers(insp *inspector.Inspector, store *database.Store, defaultChainID uint64, logger *logrus.Logger) *AnalysisHandlers {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AnalysisHandlers{
		inspector:      insp,
		store:          store,
		defaultChainID: defaultChainID,
		logger:         logger,
	}
}

// analyzeRequest is the POST /api/v1/analyze body.
type analyzeRequest struct {
	ChainID         uint64 `json:"chain_id"`
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	ForceRefresh    bool   `json:"force_refresh"`
}

// analyzeResponse wraps a TokenInfo with its cache provenance.
type analyzeResponse struct {
	Data        *inspector.TokenInfo `json:"data"`
	FromStorage bool                 `json:"from_storage"`
}

// HandleAnalyze handles POST /api/v1/analyze.
func (h *AnalysisHandlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
		return
	}
	if req.ChainID == 0 {
		req.ChainID = h.defaultChainID
	}

	contract, err := ethereum.ParseAddress(req.ContractAddress)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_ADDRESS", err.Error())
		return
	}
	tokenID, ok := new(big.Int).SetString(req.TokenID, 10)
	if !ok || tokenID.Sign() < 0 {
		h.writeError(w, http.StatusBadRequest, "INVALID_TOKEN_ID", "Token id must be a non-negative integer")
		return
	}

	ctx := r.Context()

	if h.store != nil && !req.ForceRefresh {
		if cached, err := h.store.GetAnalysis(ctx, req.ChainID, contract, tokenID.String()); err == nil {
			h.writeJSON(w, http.StatusOK, analyzeResponse{Data: cached, FromStorage: true})
			return
		}
	}

	info, err := h.inspector.InspectToken(ctx, req.ChainID, contract, tokenID, inspector.DefaultOptions())
	if err != nil {
		h.handleInspectionError(w, err)
		return
	}

	// A contract that is not an NFT at all is a 404: no token URI and no
	// advertised standard.
	if !info.IsNFT() {
		h.writeError(w, http.StatusNotFound, "NFT_NOT_FOUND", "Contract does not implement an NFT standard")
		return
	}

	if h.store != nil {
		if err := h.store.SaveAnalysis(ctx, info); err != nil {
			h.logger.WithError(err).Warn("failed to store analysis")
		}
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{Data: info, FromStorage: false})
}

// HandleGetAnalysis handles GET /api/v1/analyze/{chain_id}/{contract}/{token_id}.
func (h *AnalysisHandlers) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/analyze/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if len(parts) != 3 {
		h.writeError(w, http.StatusBadRequest, "INVALID_PATH", "Expected /api/v1/analyze/{chain_id}/{contract}/{token_id}")
		return
	}

	chainID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_CHAIN_ID", "Chain id must be an integer")
		return
	}
	contract, err := ethereum.ParseAddress(parts[1])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_ADDRESS", err.Error())
		return
	}
	tokenID, ok := new(big.Int).SetString(parts[2], 10)
	if !ok || tokenID.Sign() < 0 {
		h.writeError(w, http.StatusBadRequest, "INVALID_TOKEN_ID", "Token id must be a non-negative integer")
		return
	}

	if h.store == nil {
		h.writeError(w, http.StatusNotFound, "ANALYSIS_NOT_FOUND", "No storage configured")
		return
	}

	cached, err := h.store.GetAnalysis(r.Context(), chainID, contract, tokenID.String())
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "ANALYSIS_NOT_FOUND", fmt.Sprintf("No stored analysis for token %s", tokenID))
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("failed to load analysis")
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load analysis")
		return
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{Data: cached, FromStorage: true})
}

// HandleChains handles GET /api/v1/chains.
func (h *AnalysisHandlers) HandleChains(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, h.inspector.Registry().List())
}

func (h *AnalysisHandlers) handleInspectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inspector.ErrUnsupportedChain):
		h.writeError(w, http.StatusBadRequest, "UNSUPPORTED_CHAIN", err.Error())
	case errors.Is(err, inspector.ErrInvalidAddress), errors.Is(err, inspector.ErrInvalidTokenID):
		h.writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, inspector.ErrNoWorkingRpc):
		h.writeError(w, http.StatusBadGateway, "NO_WORKING_RPC", err.Error())
	default:
		h.logger.WithError(err).Error("inspection failed")
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Inspection failed")
	}
}

func (h *AnalysisHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func (h *AnalysisHandlers) writeError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

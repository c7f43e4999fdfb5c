package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vibe-stock-dashboard/internal/dashboard"
	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/types"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type BoardHandler struct {
	dash interfaces.Dashboard
}

func NewBoardHandler(dash interfaces.Dashboard) *BoardHandler {
	return &BoardHandler{dash: dash}
}

func (h *BoardHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *BoardHandler) GetStocks(c *gin.Context) {
	category, ok := queryCategory(c)
	if !ok {
		return
	}
	stocks := h.dash.Stocks(category)
	c.JSON(http.StatusOK, StocksResponse{Stocks: stocks, Total: len(stocks)})
}

func (h *BoardHandler) GetBoards(c *gin.Context) {
	category, ok := queryCategory(c)
	if !ok {
		return
	}
	boards, err := h.dash.Boards(c.Request.Context(), category)
	if err != nil {
		logger.ErrorWithErr(c.Request.Context(), "Failed to build boards", err, "category", category)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build boards"})
		return
	}
	c.JSON(http.StatusOK, toBoards(category, boards))
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	ticker := tickerParam(c)
	board, err := h.dash.Board(c.Request.Context(), ticker)
	if err != nil {
		h.boardError(c, ticker, err)
		return
	}
	c.JSON(http.StatusOK, toBoard(board))
}

func (h *BoardHandler) RefreshBoard(c *gin.Context) {
	ticker := tickerParam(c)
	board, err := h.dash.Refresh(c.Request.Context(), ticker)
	if err != nil {
		h.boardError(c, ticker, err)
		return
	}
	c.JSON(http.StatusOK, toBoard(board))
}

func (h *BoardHandler) GetHistory(c *gin.Context) {
	ticker := tickerParam(c)

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	items, err := h.dash.History(c.Request.Context(), ticker, limit)
	if err != nil {
		h.boardError(c, ticker, err)
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Ticker: ticker, Items: toNews(items)})
}

// GetPage renders the server-side dashboard.
func (h *BoardHandler) GetPage(c *gin.Context) {
	category, ok := queryCategory(c)
	if !ok {
		return
	}
	boards, err := h.dash.Boards(c.Request.Context(), category)
	if err != nil {
		logger.ErrorWithErr(c.Request.Context(), "Failed to build boards", err, "category", category)
		c.String(http.StatusInternalServerError, "Failed to build boards")
		return
	}
	c.HTML(http.StatusOK, pageTemplate, gin.H{
		"Category": string(category),
		"Boards":   toBoards(category, boards).Boards,
	})
}

func (h *BoardHandler) boardError(c *gin.Context, ticker string, err error) {
	if errors.Is(err, dashboard.ErrUnknownStock) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found", "ticker": ticker})
		return
	}
	logger.ErrorWithErr(c.Request.Context(), "Board request failed", err, "ticker", ticker)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build board"})
}

func tickerParam(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
}

// queryCategory writes a 400 and returns false for unknown categories.
func queryCategory(c *gin.Context) (types.Category, bool) {
	category := types.Category(strings.ToLower(c.Query("category")))
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return "", false
	}
	return category, true
}

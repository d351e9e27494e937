package webapp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"partsbot/internal"
	"partsbot/internal/access"
	"partsbot/internal/catalog"
	"partsbot/internal/export"
	"partsbot/internal/fields"
	"partsbot/internal/images"
	"partsbot/internal/issue"
	"partsbot/internal/util"
)

type Options struct {
	ServiceName string
	PageSize    int
	MaxQty      float64
}

type Handler struct {
	Catalog *catalog.Catalog
	Policy  *access.Policy
	Issues  *issue.Service
	Images  *images.Resolver
	Opts    Options
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/search", h.search)
	rg.GET("/item", h.item)
	rg.POST("/issue", h.issue)
	rg.GET("/history", h.history)
	rg.GET("/export.xlsx", h.exportXLSX)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"ok": false, "error": msg})
}

func (h *Handler) health(c *gin.Context) {
	snap := h.Catalog.Current()
	body := gin.H{"ok": true, "service": h.Opts.ServiceName, "path": "/app", "records": snap.Len()}
	if snap != nil {
		body["source"] = snap.Source
		body["loaded_at"] = snap.LoadedAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

// userID reads user_id from the query; zero when absent or invalid.
func userID(c *gin.Context) int64 {
	id, _ := util.ParseUserID(c.Query("user_id"))
	return id
}

func (h *Handler) allowed(c *gin.Context, uid int64) bool {
	if uid == 0 || h.Policy == nil {
		return true
	}
	if h.Policy.IsAllowed(c.Request.Context(), uid) {
		return true
	}
	fail(c, http.StatusForbidden, "Доступ запрещён")
	return false
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, "Пустой запрос")
		return
	}
	uid := userID(c)
	if !h.allowed(c, uid) {
		return
	}

	res, err := h.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		log.Error().Err(err).Str("q", q).Msg("search")
		fail(c, http.StatusInternalServerError, "Данные не загружены")
		return
	}

	offset := parseInt(c.Query("offset"), 0)
	page, more := catalog.Page(res.Items, offset, parseInt(c.Query("limit"), 0), h.Opts.PageSize)
	items := make([]gin.H, 0, len(page))
	for _, it := range page {
		items = append(items, itemJSON(it, images.NormalizeDriveURL(it.Card.ImageURL)))
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"q":       q,
		"user_id": strconv.FormatInt(uid, 10),
		"tier":    res.Tier,
		"count":   len(res.Items),
		"offset":  offset,
		"more":    more,
		"items":   items,
	})
}

// itemJSON keeps the raw record fields and adds the resolved card.
func itemJSON(it catalog.Item, imageURL string) gin.H {
	out := gin.H{}
	for k, v := range it.Record {
		out[k] = v
	}
	out[internal.ColImageURL] = imageURL
	out["card"] = it.Card
	return out
}

func (h *Handler) item(c *gin.Context) {
	code := strings.ToLower(strings.TrimSpace(c.Query("code")))
	if code == "" {
		fail(c, http.StatusBadRequest, "code обязателен")
		return
	}
	if !h.allowed(c, userID(c)) {
		return
	}

	ctx := c.Request.Context()
	it, err := h.Catalog.FindByCode(ctx, code)
	if errors.Is(err, catalog.ErrNotFound) {
		fail(c, http.StatusNotFound, "Не найдено")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("item")
		fail(c, http.StatusInternalServerError, "Данные не загружены")
		return
	}

	img := it.Card.ImageURL
	if img == "" {
		img, _ = h.Catalog.FindImage(ctx, code)
	}
	if h.Images != nil {
		img = h.Images.Resolve(ctx, img)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"code":      code,
		"item":      itemJSON(it, img),
		"card":      it.Card,
		"image_url": img,
		"text":      fields.CardText(it.Card),
	})
}

// issue accepts both the Mini App field names and the camelCase ones.
func (h *Handler) issue(c *gin.Context) {
	var body internal.Record
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Неверный JSON")
		return
	}
	qty := fields.ResolveField(body, []string{"qty", "quantity"}, "")
	if qty == "" {
		fail(c, http.StatusBadRequest, "qty обязателен")
		return
	}
	uid, _ := util.ParseUserID(fields.ResolveField(body, []string{"user_id", "userId"}, ""))
	if !h.allowed(c, uid) {
		return
	}
	code := fields.ResolveField(body, []string{"code"}, "")

	row, err := h.Issues.Issue(c.Request.Context(), internal.IssueRequest{
		UserID:  uid,
		Name:    fields.ResolveField(body, []string{"name"}, ""),
		Code:    code,
		Qty:     qty,
		Comment: fields.ResolveField(body, []string{"comment"}, ""),
	})
	switch {
	case err == nil:
	case errors.Is(err, issue.ErrCodeRequired):
		fail(c, http.StatusBadRequest, "code обязателен")
		return
	case errors.Is(err, util.ErrInvalidQty):
		fail(c, http.StatusBadRequest, fmt.Sprintf("qty должен быть > 0 и ≤ %s", util.FormatNumber(h.Opts.MaxQty)))
		return
	case errors.Is(err, issue.ErrForbidden):
		fail(c, http.StatusForbidden, "Доступ запрещён")
		return
	case errors.Is(err, issue.ErrNotFound):
		fail(c, http.StatusNotFound, "Деталь не найдена")
		return
	default:
		log.Error().Err(err).Str("code", code).Msg("issue")
		fail(c, http.StatusInternalServerError, fmt.Sprintf("Ошибка записи в История: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": row.ID, "code": row.Code, "qty": row.Qty})
}

func (h *Handler) history(c *gin.Context) {
	uid := userID(c)
	if uid == 0 || h.Policy == nil || !h.Policy.IsAdmin(c.Request.Context(), uid) {
		fail(c, http.StatusForbidden, "Доступ запрещён")
		return
	}
	rows, err := h.Issues.Recent(0, parseInt(c.Query("limit"), 50))
	if err != nil {
		log.Error().Err(err).Msg("history")
		fail(c, http.StatusInternalServerError, "history failed")
		return
	}
	if rows == nil {
		rows = []internal.IssueRow{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(rows), "items": rows})
}

func (h *Handler) exportXLSX(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, "Пустой запрос")
		return
	}
	if !h.allowed(c, userID(c)) {
		return
	}
	res, err := h.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Данные не загружены")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="search.xlsx"`)
	c.Status(http.StatusOK)
	if err := export.WriteXLSX(c.Writer, res.Items); err != nil {
		log.Error().Err(err).Msg("export xlsx")
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

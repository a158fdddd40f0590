package server

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/braude/garage/pkg/types"
)

// resource serves one entity collection.
type resource[E any] struct {
	name    string // Path segment and table name.
	entity  string // Singular name for problem bodies.
	fields  []string
	idOf    func(E) (int64, bool)
	backend types.Backend
}

func newResource[E any](s *Server, name string, idOf func(E) (int64, bool)) *resource[E] {
	return &resource[E]{
		name:    name,
		entity:  types.EntityNames[name],
		fields:  types.EntityFields[name],
		idOf:    idOf,
		backend: s.backend,
	}
}

func (r *resource[E]) table(c *gin.Context) (types.Table, bool) {
	t, err := r.backend.GetTable(r.name)
	if err != nil {
		writeError(c, r.entity, err)
		return nil, false
	}
	return t, true
}

// list handles GET /api/<name>.
func (r *resource[E]) list(c *gin.Context) {
	q, page, ok := r.query(c)
	if !ok {
		return
	}
	r.respondPage(c, q, page)
}

// search handles GET /api/_search/<name>?query=.
func (r *resource[E]) search(c *gin.Context) {
	q, page, ok := r.query(c)
	if !ok {
		return
	}
	q.Search = c.Query("query")
	r.respondPage(c, q, page)
}

// count handles GET /api/<name>/count.
func (r *resource[E]) count(c *gin.Context) {
	criteria, err := types.ParseCriteria(c.Request.URL.Query(), r.fields)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	t, ok := r.table(c)
	if !ok {
		return
	}
	n, err := t.Count(types.Query{Criteria: criteria})
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// get handles GET /api/<name>/:id.
func (r *resource[E]) get(c *gin.Context) {
	id, ok := r.pathID(c)
	if !ok {
		return
	}
	t, ok := r.table(c)
	if !ok {
		return
	}
	e, err := t.Get(id)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// create handles POST /api/<name>. The body must not carry an id.
func (r *resource[E]) create(c *gin.Context) {
	e, ok := r.bind(c)
	if !ok {
		return
	}
	if _, has := r.idOf(e); has {
		badRequest(c, r.entity, "idexists", fmt.Sprintf("A new %s cannot already have an ID", r.entity))
		return
	}
	t, ok := r.table(c)
	if !ok {
		return
	}
	id, err := t.Set(0, &e)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	saved, err := t.Get(id)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/%s/%d", r.name, id))
	c.JSON(http.StatusCreated, saved)
}

// update handles PUT /api/<name>. The body must carry the id.
func (r *resource[E]) update(c *gin.Context) {
	e, ok := r.bind(c)
	if !ok {
		return
	}
	id, has := r.idOf(e)
	if !has {
		badRequest(c, r.entity, "idnull", "Invalid id")
		return
	}
	t, ok := r.table(c)
	if !ok {
		return
	}
	if _, err := t.Set(id, &e); err != nil {
		writeError(c, r.entity, err)
		return
	}
	saved, err := t.Get(id)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// delete handles DELETE /api/<name>/:id.
func (r *resource[E]) delete(c *gin.Context) {
	id, ok := r.pathID(c)
	if !ok {
		return
	}
	t, ok := r.table(c)
	if !ok {
		return
	}
	if err := t.Delete(id); err != nil {
		writeError(c, r.entity, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *resource[E]) bind(c *gin.Context) (E, bool) {
	var e E
	if err := c.ShouldBindJSON(&e); err != nil {
		writeProblem(c, types.Problem{
			Title:      "Malformed request body",
			Status:     http.StatusBadRequest,
			Detail:     err.Error(),
			Message:    "error.validation",
			EntityName: r.entity,
			ErrorKey:   "validation",
		})
		return e, false
	}
	return e, true
}

func (r *resource[E]) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, r.entity, fmt.Errorf("id %q: %w", c.Param("id"), types.ErrInvalidID))
		return 0, false
	}
	return id, true
}

// pageRequest is a resolved page of a list request.
type pageRequest struct {
	number int
	size   int
}

// query parses criteria, page, size and sort from the request.
func (r *resource[E]) query(c *gin.Context) (types.Query, pageRequest, bool) {
	criteria, err := types.ParseCriteria(c.Request.URL.Query(), r.fields)
	if err != nil {
		writeError(c, r.entity, err)
		return types.Query{}, pageRequest{}, false
	}

	page := pageRequest{size: DefaultPageSize}
	if v := c.Query("page"); v != "" {
		if page.number, err = strconv.Atoi(v); err != nil || page.number < 0 {
			writeError(c, r.entity, fmt.Errorf("page %q: %w", v, types.ErrInvalidFilter))
			return types.Query{}, pageRequest{}, false
		}
	}
	if v := c.Query("size"); v != "" {
		if page.size, err = strconv.Atoi(v); err != nil || page.size <= 0 {
			writeError(c, r.entity, fmt.Errorf("size %q: %w", v, types.ErrInvalidFilter))
			return types.Query{}, pageRequest{}, false
		}
		page.size = min(page.size, MaxPageSize)
	}
	if page.number > math.MaxInt/page.size {
		writeError(c, r.entity, fmt.Errorf("page %d: offset out of range: %w", page.number, types.ErrInvalidFilter))
		return types.Query{}, pageRequest{}, false
	}

	var sort []types.SortOrder
	for _, s := range c.QueryArray("sort") {
		so, err := types.ParseSort(s)
		if err != nil {
			writeError(c, r.entity, fmt.Errorf("sort %q: %w", s, err))
			return types.Query{}, pageRequest{}, false
		}
		sort = append(sort, so)
	}

	return types.Query{
		Criteria: criteria,
		Sort:     sort,
		Offset:   page.number * page.size,
		Limit:    page.size,
	}, page, true
}

// respondPage writes one page of q with X-Total-Count and Link headers.
func (r *resource[E]) respondPage(c *gin.Context, q types.Query, page pageRequest) {
	t, ok := r.table(c)
	if !ok {
		return
	}
	items, err := t.Fetch(q)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	total, err := t.Count(q)
	if err != nil {
		writeError(c, r.entity, err)
		return
	}
	c.Header(headerTotalCount, strconv.FormatInt(total, 10))
	c.Header("Link", linkHeader(*c.Request.URL, page, total))
	c.JSON(http.StatusOK, items)
}

// linkHeader builds the RFC 5988 pagination links for the current request.
func linkHeader(u url.URL, page pageRequest, total int64) string {
	last := 0
	if total > 0 {
		last = int((total - 1) / int64(page.size))
	}
	var links []string
	add := func(n int, rel string) {
		q := u.Query()
		q.Del("cacheBuster")
		q.Set("page", strconv.Itoa(n))
		q.Set("size", strconv.Itoa(page.size))
		u.RawQuery = q.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="%s"`, u.RequestURI(), rel))
	}
	if page.number < last {
		add(page.number+1, "next")
	}
	if page.number > 0 {
		add(page.number-1, "prev")
	}
	add(last, "last")
	add(0, "first")
	return strings.Join(links, ",")
}

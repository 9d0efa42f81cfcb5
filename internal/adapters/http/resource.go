package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/http/middleware"
	"gymfront/internal/application/crud"
	"gymfront/internal/application/listutil"
	"gymfront/internal/application/orchestrators"
	"gymfront/internal/domain/antecedente"
)

// column is one table column of a list page.
type column[T any] struct {
	Header   string
	Value    func(T) string
	Markdown bool
	Sort     string // sort key; empty when the column is not sortable
}

// listFilter is an exact-match filter offered as a select above the table.
type listFilter[T any] struct {
	Param   string
	Label   string
	Options func(items []T) []crud.Option
	Match   func(item T, value string) bool
}

// rowAction is a per-row link or button. Post actions render as a small form.
type rowAction struct {
	Label  string
	URL    string
	Post   bool
	Danger bool
	Fields map[string]string
}

// optionLoader fetches the choices of a select field.
type optionLoader func(ctx context.Context) ([]crud.Option, error)

// resourcePage is the list/form page pattern shared by every entity.
// A nil col with a fetch function gives a read-only page over a bespoke endpoint.
type resourcePage[T crud.Keyed, D any] struct {
	s        *Server
	title    string
	singular string
	base     string
	col      *backend.Collection[T, D]

	columns []column[T]
	search  func(T) []string
	filters []listFilter[T]

	// fetch replaces col.List.
	fetch func(ctx context.Context, sess middleware.Session) ([]T, error)
	// query narrows col.List to the caller's records.
	query func(sess middleware.Session) url.Values
	// owns drops records outside the caller's scope; drops are logged as scope_leak.
	owns func(sess middleware.Session, item T) bool
	// keep hides records the page never offers.
	keep func(item T) bool

	schema     crud.Schema
	editSchema *crud.Schema
	refs       map[string]optionLoader
	defaults   func() map[string]string
	preset     func(sess middleware.Session) map[string]string
	keyField   string // field holding the record key; locked on edit
	create     func(ctx context.Context, sess middleware.Session, in D) error

	canCreate bool
	canEdit   bool
	canDelete bool
	actions   func(sess middleware.Session, item T) []rowAction
}

// listView is what list.html renders.
type listView struct {
	Base      string
	Singular  string
	Columns   []listHeader
	Rows      []listRow
	Search    string
	HasSearch bool
	Filters   []filterView
	Keep      []hiddenField
	Pending   *listRow
	CanCreate bool
	PageInfo  listutil.PageInfo
	Query     url.Values
	Empty     string
}

type listHeader struct {
	Label string
	URL   string // sort link; empty when not sortable
	Arrow string
}

type listRow struct {
	Key     string
	Label   string
	Cells   []cellView
	Actions []rowAction
}

type cellView struct {
	Text     string
	Markdown bool
}

type filterView struct {
	Param    string
	Label    string
	Value    string
	Options  []crud.Option
	ClearURL string
}

type hiddenField struct {
	Name, Value string
}

// formView is what form.html renders.
type formView struct {
	Action  string
	Cancel  string
	Editing bool
	Fields  []fieldView
	Form    *crud.FormState
	IMC     bool
}

type fieldView struct {
	crud.Field
	Value  string
	Errors []string
	Locked bool
}

func (p *resourcePage[T, D]) register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	h := func(fn http.HandlerFunc) http.Handler { return guard(fn) }
	mux.Handle("GET "+p.base, h(p.handleList))
	if p.canCreate {
		mux.Handle("GET "+p.base+"/nuevo", h(p.handleNew))
		mux.Handle("POST "+p.base+"/nuevo", h(p.handleCreate))
	}
	if p.canEdit {
		mux.Handle("GET "+p.base+"/{id}/editar", h(p.handleEdit))
		mux.Handle("POST "+p.base+"/{id}/editar", h(p.handleUpdate))
	}
	if p.canDelete {
		mux.Handle("GET "+p.base+"/{id}/eliminar", h(p.handleAskDelete))
		mux.Handle("POST "+p.base+"/{id}/eliminar", h(p.handleDelete))
	}
}

// load fetches the records the caller may see.
// POST: Foreign records are dropped and logged; keep is applied
func (p *resourcePage[T, D]) load(ctx context.Context, sess middleware.Session) ([]T, error) {
	var items []T
	var err error
	if p.fetch != nil {
		items, err = p.fetch(ctx, sess)
	} else {
		var q url.Values
		if p.query != nil {
			q = p.query(sess)
		}
		items, err = p.col.List(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	if p.owns != nil {
		mine := crud.Where(items, func(it T) bool { return p.owns(sess, it) })
		if dropped := len(items) - len(mine); dropped > 0 {
			slog.Warn("scope_leak", "resource", p.base, "dropped", dropped, "user_id", sess.UserID, "role", sess.Role.String())
		}
		items = mine
	}
	if p.keep != nil {
		items = crud.Where(items, p.keep)
	}
	return items, nil
}

func (p *resourcePage[T, D]) handleList(w http.ResponseWriter, r *http.Request) {
	p.renderList(w, r, "", "", http.StatusOK)
}

// renderList loads and renders the list, optionally asking to confirm the deletion of pendingKey.
func (p *resourcePage[T, D]) renderList(w http.ResponseWriter, r *http.Request, pendingKey, banner string, status int) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	items, err := p.load(r.Context(), sess)
	if err != nil {
		p.s.fail(w, r, err)
		return
	}
	state := crud.NewListState(items)
	state.Error = banner
	if pendingKey != "" {
		state.MarkDelete(pendingKey)
		if _, ok := state.Pending(); !ok {
			p.s.notFound(w, r)
			return
		}
	}
	view := p.listView(r, sess, state)
	p.s.render(w, r, status, "list.html", page{Title: p.title, Error: state.Error, Data: view})
}

func (p *resourcePage[T, D]) listView(r *http.Request, sess middleware.Session, state *crud.ListState[T]) listView {
	q := r.URL.Query()
	sortKeys := map[string]func(T) string{}
	for _, c := range p.columns {
		if c.Sort != "" {
			sortKeys[c.Sort] = c.Value
		}
	}
	allowed := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		allowed = append(allowed, k)
	}
	filterKeys := make([]string, len(p.filters))
	for i, f := range p.filters {
		filterKeys[i] = f.Param
	}
	params := listutil.ParseListParams(q, allowed, filterKeys)

	shown := state.Items
	if p.search != nil {
		shown = crud.Filter(shown, params.Search, p.search)
	}
	filters := make([]filterView, 0, len(p.filters))
	for _, f := range p.filters {
		v := params.Filters[f.Param]
		filters = append(filters, filterView{
			Param:    f.Param,
			Label:    f.Label,
			Value:    v,
			Options:  f.Options(state.Items),
			ClearURL: p.base + "?" + listutil.QueryWith(q, f.Param, ""),
		})
		if v != "" {
			shown = crud.Where(shown, func(it T) bool { return f.Match(it, v) })
		}
	}
	shown = append([]T(nil), shown...)
	listutil.SortItems(shown, params.SortParams, sortKeys)
	info := listutil.NewPageInfo(params.Page, params.PerPage, len(shown))

	view := listView{
		Base:      p.base,
		Singular:  p.singular,
		Search:    params.Search,
		HasSearch: p.search != nil,
		Filters:   filters,
		Keep:      hiddenExcept(q, append(filterKeys, "q")),
		CanCreate: p.canCreate,
		PageInfo:  info,
		Query:     q,
		Empty:     "No hay registros para mostrar.",
	}
	for _, c := range p.columns {
		h := listHeader{Label: c.Header}
		if c.Sort != "" {
			dir := "asc"
			if params.Sort == c.Sort && params.Dir == "asc" {
				dir = "desc"
			}
			if params.Sort == c.Sort {
				h.Arrow = map[string]string{"asc": "▲", "desc": "▼"}[params.Dir]
			}
			nq := url.Values{}
			for k, vs := range q {
				nq[k] = vs
			}
			nq.Set("sort", c.Sort)
			nq.Set("dir", dir)
			nq.Del("page")
			h.URL = p.base + "?" + nq.Encode()
		}
		view.Columns = append(view.Columns, h)
	}
	for _, it := range listutil.Paginate(shown, info) {
		view.Rows = append(view.Rows, p.row(sess, it))
	}
	if it, ok := state.Pending(); ok {
		row := p.row(sess, it)
		view.Pending = &row
	}
	return view
}

func (p *resourcePage[T, D]) row(sess middleware.Session, it T) listRow {
	row := listRow{Key: it.Key()}
	for i, c := range p.columns {
		v := c.Value(it)
		if i == 0 {
			row.Label = v
		}
		row.Cells = append(row.Cells, cellView{Text: v, Markdown: c.Markdown})
	}
	if p.actions != nil {
		row.Actions = append(row.Actions, p.actions(sess, it)...)
	}
	if p.canEdit {
		row.Actions = append(row.Actions, rowAction{Label: "Editar", URL: p.base + "/" + row.Key + "/editar"})
	}
	if p.canDelete {
		row.Actions = append(row.Actions, rowAction{Label: "Eliminar", URL: p.base + "/" + row.Key + "/eliminar", Danger: true})
	}
	return row
}

// hiddenExcept carries the query parameters the filter form does not set itself.
func hiddenExcept(q url.Values, skip []string) []hiddenField {
	drop := map[string]bool{"page": true, "ok": true}
	for _, k := range skip {
		drop[k] = true
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		if !drop[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var out []hiddenField
	for _, k := range keys {
		out = append(out, hiddenField{Name: k, Value: q.Get(k)})
	}
	return out
}

func (p *resourcePage[T, D]) handleAskDelete(w http.ResponseWriter, r *http.Request) {
	p.renderList(w, r, r.PathValue("id"), "", http.StatusOK)
}

// handleDelete confirms a pending deletion.
// POST: On success the browser returns to the list with a notice; on failure the list shows the error
func (p *resourcePage[T, D]) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	key := r.PathValue("id")
	items, err := p.load(r.Context(), sess)
	if err != nil {
		p.s.fail(w, r, err)
		return
	}
	state := crud.NewListState(items)
	state.MarkDelete(key)
	if _, ok := state.Pending(); !ok {
		p.s.notFound(w, r)
		return
	}
	if err := state.ConfirmDelete(r.Context(), p.col.Delete); err != nil {
		if p.s.rejected(w, r, err) {
			return
		}
		slog.Warn("delete_failed", "resource", p.base, "key", key, "error", err)
		view := p.listView(r, sess, state)
		p.s.render(w, r, statusFor(err), "list.html", page{Title: p.title, Error: state.Error, Data: view})
		return
	}
	slog.Info("resource_deleted", "resource", p.base, "key", key, "user_id", sess.UserID)
	http.Redirect(w, r, p.base+"?ok=eliminado", http.StatusSeeOther)
}

// formSchema returns the schema with select options loaded. When key is set the
// entity is fetched alongside the options and returned in dst.
func (p *resourcePage[T, D]) formSchema(ctx context.Context, editing bool, key string, dst *T) (crud.Schema, error) {
	schema := p.schema
	if editing && p.editSchema != nil {
		schema = *p.editSchema
	}
	names := make([]string, 0, len(p.refs))
	for n := range p.refs {
		if _, ok := schema.Field(n); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	opts := make([][]crud.Option, len(names))
	loaders := make([]crud.Loader, 0, len(names)+1)
	for i, n := range names {
		loaders = append(loaders, crud.Into(&opts[i], p.refs[n]))
	}
	if key != "" && dst != nil {
		loaders = append(loaders, crud.Into(dst, func(ctx context.Context) (T, error) {
			return p.col.Get(ctx, key)
		}))
	}
	if err := crud.LoadAll(ctx, loaders...); err != nil {
		return crud.Schema{}, err
	}
	for i, n := range names {
		schema = schema.WithOptions(n, opts[i])
	}
	return schema, nil
}

func (p *resourcePage[T, D]) locked(sess middleware.Session) map[string]string {
	if p.preset == nil {
		return nil
	}
	return p.preset(sess)
}

func (p *resourcePage[T, D]) formView(schema crud.Schema, form *crud.FormState, locked map[string]string, action string, editing bool) formView {
	v := formView{Action: action, Cancel: p.base, Editing: editing, Form: form}
	_, peso := schema.Field("peso")
	_, altura := schema.Field("altura")
	v.IMC = peso && altura
	imc := ""
	if v.IMC {
		imc = antecedente.IMCText(form.Values["peso"], form.Values["altura"])
	}
	for _, f := range schema.Fields {
		_, isLocked := locked[f.Name]
		if editing && f.Name == p.keyField {
			isLocked = true
		}
		value := form.Values[f.Name]
		if lv, ok := locked[f.Name]; ok {
			value = lv
		}
		if v.IMC && f.Name == "imc" {
			value = imc
		}
		v.Fields = append(v.Fields, fieldView{Field: f, Value: value, Errors: form.Errors(f.Name), Locked: isLocked})
	}
	return v
}

func (p *resourcePage[T, D]) handleNew(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	schema, err := p.formSchema(r.Context(), false, "", nil)
	if err != nil {
		p.s.fail(w, r, err)
		return
	}
	var values map[string]string
	if p.defaults != nil {
		values = p.defaults()
	}
	form := crud.NewFormState(values)
	view := p.formView(schema, form, p.locked(sess), p.base+"/nuevo", false)
	p.s.render(w, r, http.StatusOK, "form.html", page{Title: "Nuevo " + p.singular, Data: view})
}

// handleCreate validates locally and creates the record.
// POST: Invalid input never reaches the backend; success redirects to the list
func (p *resourcePage[T, D]) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	locked := p.locked(sess)
	for k, v := range locked {
		r.PostForm.Set(k, v)
	}

	schema, err := p.formSchema(r.Context(), false, "", nil)
	if err != nil {
		p.s.fail(w, r, err)
		return
	}
	form := crud.NewFormState(schema.Values(r.PostForm))
	var in D
	if fe := schema.Decode(r.PostForm, &in); fe != nil {
		form.AddErrors(fe)
		p.s.render(w, r, http.StatusUnprocessableEntity, "form.html", page{Title: "Nuevo " + p.singular, Data: p.formView(schema, form, locked, p.base+"/nuevo", false)})
		return
	}

	form.Submitting = true
	if p.create != nil {
		err = p.create(r.Context(), sess, in)
	} else {
		_, err = p.col.Create(r.Context(), in)
	}
	if err != nil {
		if p.s.rejected(w, r, err) {
			return
		}
		status := statusFor(err)
		var invalid *orchestrators.InvalidInputError
		if errors.As(err, &invalid) {
			form.Submitting = false
			form.AddErrors(invalid.Fields)
			status = http.StatusUnprocessableEntity
		} else {
			form.ApplyServerError(err, schema.Names())
		}
		slog.Warn("create_failed", "resource", p.base, "user_id", sess.UserID, "error", err)
		p.s.render(w, r, status, "form.html", page{Title: "Nuevo " + p.singular, Data: p.formView(schema, form, locked, p.base+"/nuevo", false)})
		return
	}
	slog.Info("resource_created", "resource", p.base, "user_id", sess.UserID)
	http.Redirect(w, r, p.base+"?ok=creado", http.StatusSeeOther)
}

func (p *resourcePage[T, D]) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	key := r.PathValue("id")
	var entity T
	schema, err := p.formSchema(r.Context(), true, key, &entity)
	if err != nil {
		p.s.fail(w, r, err)
		return
	}
	if p.owns != nil && !p.owns(sess, entity) {
		slog.Warn("scope_leak", "resource", p.base, "key", key, "user_id", sess.UserID)
		p.s.notFound(w, r)
		return
	}
	values, err := schema.Encode(entity)
	if err != nil {
		internalError(w, err)
		return
	}
	form := crud.NewFormState(values)
	view := p.formView(schema, form, p.locked(sess), p.base+"/"+key+"/editar", true)
	p.s.render(w, r, http.StatusOK, "form.html", page{Title: "Editar " + p.singular, Data: view})
}

// handleUpdate validates locally and replaces the record.
func (p *resourcePage[T, D]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	key := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	locked := p.locked(sess)
	for k, v := range locked {
		r.PostForm.Set(k, v)
	}
	if p.keyField != "" {
		r.PostForm.Set(p.keyField, key)
	}

	schema, err := p.formSchema(r.Context(), true, "", nil)
	if err != nil {
		p.s.fail(w, r, err)
		return
	}
	action := p.base + "/" + key + "/editar"
	form := crud.NewFormState(schema.Values(r.PostForm))
	var in D
	if fe := schema.DecodeEdit(r.PostForm, &in); fe != nil {
		form.AddErrors(fe)
		p.s.render(w, r, http.StatusUnprocessableEntity, "form.html", page{Title: "Editar " + p.singular, Data: p.formView(schema, form, locked, action, true)})
		return
	}
	if _, err := p.col.Update(r.Context(), key, in); err != nil {
		if p.s.rejected(w, r, err) {
			return
		}
		form.ApplyServerError(err, schema.Names())
		slog.Warn("update_failed", "resource", p.base, "key", key, "user_id", sess.UserID, "error", err)
		p.s.render(w, r, statusFor(err), "form.html", page{Title: "Editar " + p.singular, Data: p.formView(schema, form, locked, action, true)})
		return
	}
	slog.Info("resource_updated", "resource", p.base, "key", key, "user_id", sess.UserID)
	http.Redirect(w, r, p.base+"?ok=actualizado", http.StatusSeeOther)
}

// optionsOf turns a fetched list into select options.
func optionsOf[T any](items []T, value, label func(T) string) []crud.Option {
	out := make([]crud.Option, 0, len(items))
	for _, it := range items {
		out = append(out, crud.Option{Value: value(it), Label: label(it)})
	}
	return out
}

type labeled interface {
	crud.Keyed
	Label() string
}

// refOptions loads a collection as select options keyed by record key.
func refOptions[T labeled, D any](col *backend.Collection[T, D], q url.Values, keep func(T) bool) optionLoader {
	return func(ctx context.Context) ([]crud.Option, error) {
		items, err := col.List(ctx, q)
		if err != nil {
			return nil, err
		}
		if keep != nil {
			items = crud.Where(items, keep)
		}
		return optionsOf(items, func(it T) string { return it.Key() }, func(it T) string { return it.Label() }), nil
	}
}

// distinct builds filter options from the values found in items, in first-seen order.
func distinct[T any](value func(T) string) func(items []T) []crud.Option {
	return func(items []T) []crud.Option {
		seen := map[string]bool{}
		var out []crud.Option
		for _, it := range items {
			v := value(it)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, crud.Option{Value: v, Label: v})
		}
		return out
	}
}

// fixed offers the same filter options whatever the items.
func fixed[T any](values []string) func(items []T) []crud.Option {
	opts := make([]crud.Option, len(values))
	for i, v := range values {
		opts[i] = crud.Option{Value: v, Label: v}
	}
	return func([]T) []crud.Option { return opts }
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"

	"github.com/sukanto-m/wiki-featured/store"
	"github.com/sukanto-m/wiki-featured/store/sqlstore"
)

// cap on rows returned by a single /api/rows request
const maxCount = 20000

type FeedServer struct {
	ErrLog  store.Logger
	InfoLog store.Logger
	Port    int
	Prefix  string

	db *sqlstore.SQLStore
}

func NewServer(db *sqlstore.SQLStore, port int, prefix string, infoLog, errLog store.Logger) *FeedServer {
	return &FeedServer{db: db, Port: port, Prefix: prefix, InfoLog: infoLog, ErrLog: errLog}
}

func (srv *FeedServer) Run() error {
	http.Handle(srv.Prefix+"/api/counts", handlers.CompressHandler(
		http.HandlerFunc(srv.countsHandler)))
	http.Handle(srv.Prefix+"/api/rows", handlers.CompressHandler(
		http.HandlerFunc(srv.rowsHandler)))

	srv.InfoLog.Printf("Started at localhost:%d%s/\n", srv.Port, srv.Prefix)
	return http.ListenAndServe(fmt.Sprintf(":%d", srv.Port), nil)
}

func EmitError(w http.ResponseWriter, statusCode int) {
	txt := fmt.Sprintf("%d - %s", statusCode, http.StatusText(statusCode))
	http.Error(w, txt, statusCode)
}

// query params shared by the api endpoints:
//
//	variant  "most_read" (default) or "featured"
//	from,to  inclusive YYYY-MM-DD bounds
//	section  repeatable section filter
//	count    max rows (rows endpoint only)
func getVariant(r *http.Request) (store.Variant, error) {
	name := r.FormValue("variant")
	if name == "" {
		name = store.MostRead.Table
	}
	return store.VariantByName(name)
}

func parseDay(in string) (string, error) {
	t, err := time.ParseInLocation(store.DateFormat, in, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date format")
	}
	return store.Day(t), nil
}

func getFilter(r *http.Request) (*store.Filter, error) {
	filt := &store.Filter{}

	if r.FormValue("from") != "" {
		day, err := parseDay(r.FormValue("from"))
		if err != nil {
			return nil, fmt.Errorf("bad 'from' param")
		}
		filt.DateFrom = day
	}
	if r.FormValue("to") != "" {
		day, err := parseDay(r.FormValue("to"))
		if err != nil {
			return nil, fmt.Errorf("bad 'to' param")
		}
		filt.DateTo = day
	}

	if r.FormValue("count") != "" {
		cnt, err := strconv.Atoi(r.FormValue("count"))
		if err != nil {
			return nil, fmt.Errorf("bad 'count' param")
		}
		filt.Count = cnt
	} else {
		filt.Count = maxCount
	}
	if filt.Count > maxCount {
		return nil, fmt.Errorf("'count' too high (max %d)", maxCount)
	}

	r.ParseForm()
	if sections, got := r.Form["section"]; got {
		filt.Sections = sections
	}

	return filt, nil
}

// implement the per-day/section counts API
func (srv *FeedServer) countsHandler(w http.ResponseWriter, r *http.Request) {
	v, err := getVariant(r)
	if err != nil {
		EmitError(w, 400)
		return
	}
	filt, err := getFilter(r)
	if err != nil {
		EmitError(w, 400)
		return
	}

	counts, err := srv.db.DayCounts(v, filt.DateFrom, filt.DateTo)
	if err != nil {
		srv.ErrLog.Printf("/counts DB error: %s\n", err)
		EmitError(w, 500)
		return
	}

	out := struct {
		Counts []store.DayCount `json:"counts"`
	}{counts}
	srv.writeJSON(w, &out)
	srv.InfoLog.Printf("%s /api/counts OK %d counts %s\n", r.RemoteAddr, len(counts), filt.Describe())
}

// implement the row fetch API
func (srv *FeedServer) rowsHandler(w http.ResponseWriter, r *http.Request) {
	v, err := getVariant(r)
	if err != nil {
		EmitError(w, 400)
		return
	}
	filt, err := getFilter(r)
	if err != nil {
		EmitError(w, 400)
		return
	}

	it := srv.db.Fetch(v, filt)
	defer it.Close()

	rows := []rowMsg{}
	for it.Next() {
		row := it.Row()
		rows = append(rows, rowMsg{
			Date:    row.Date,
			Section: row.Section,
			Title:   row.Title,
			Extra:   row.Extra,
			URL:     row.URL,
		})
	}
	if err := it.Err(); err != nil {
		srv.ErrLog.Printf("/rows DB error: %s\n", err)
		EmitError(w, 500)
		return
	}

	out := struct {
		Rows []rowMsg `json:"rows"`
	}{rows}
	srv.writeJSON(w, &out)
	srv.InfoLog.Printf("%s /api/rows OK %d rows %s\n", r.RemoteAddr, len(rows), filt.Describe())
}

type rowMsg struct {
	Date    string `json:"date"`
	Section string `json:"section"`
	Title   string `json:"title"`
	Extra   string `json:"extra,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (srv *FeedServer) writeJSON(w http.ResponseWriter, out interface{}) {
	w.Header().Set("Content-Type", "application/json")
	outBuf, err := json.Marshal(out)
	if err != nil {
		srv.ErrLog.Printf("json encoding error: %s\n", err)
		EmitError(w, 500)
		return
	}
	if _, err := w.Write(outBuf); err != nil {
		srv.ErrLog.Printf("write error: %s\n", err)
	}
}

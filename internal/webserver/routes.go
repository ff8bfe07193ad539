package webserver

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/webapi"
)

// registerRoutes sets up the API and index routes on mux and returns the
// handler to serve.
func registerRoutes(mux *http.ServeMux, cfg Config) http.Handler {
	store := webapi.NewFileStore(cfg.ResultsDir)
	webapi.RegisterRoutes(mux, store)
	mux.Handle("GET /{$}", indexHandler(store))
	return webapi.CORSMiddleware(mux, cfg.AllowedOrigins...)
}

// indexHandler renders a page linking every stored run to its report.
func indexHandler(store webapi.RunStore) http.Handler {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runs, err := store.ListRuns()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })

		tag := risk.MatchLanguage(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		p := risk.Printer(tag)

		var src bytes.Buffer
		fmt.Fprintf(&src, "# %s\n\n", p.Sprintf(risk.MsgResultsTitle))
		if len(runs) == 0 {
			src.WriteString("_No runs yet._\n")
		} else {
			fmt.Fprintf(&src, "| run | %s | %s | CSV |\n|---|---|---|---|\n", p.Sprintf(risk.MsgAverage), p.Sprintf(risk.MsgRiskLevel))
			for _, run := range runs {
				fmt.Fprintf(&src, "| [%s](/api/runs/%s/report) | %s | %s | [csv](/api/runs/%s/csv) |\n",
					runLabel(run), run.ID, meanText(run), riskText(run), run.ID)
			}
		}

		var page bytes.Buffer
		if err := md.Convert(src.Bytes(), &page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html>\n<html lang=%q>\n<head><meta charset=\"utf-8\"><title>rula</title></head>\n<body>\n%s</body>\n</html>\n", tag.String(), page.String())
	})
}

// labelEscaper keeps a source path from closing the link text or splitting
// the table row.
var labelEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, "[", `\[`, "]", `\]`)

func runLabel(run *export.Run) string {
	if run.Source != "" {
		return labelEscaper.Replace(run.Source)
	}
	return run.ID
}

func meanText(run *export.Run) string {
	sum, err := run.Series.Summary()
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", sum.Mean)
}

func riskText(run *export.Run) string {
	sum, err := run.Series.Summary()
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%d", int(sum.Risk))
}

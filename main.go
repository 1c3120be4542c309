package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"admitwise/recommender/recommender"
)

const allBranchesLabel = "All branches"

func main() {
	fyneApp := app.NewWithID("admitwise.recommender")
	win := fyneApp.NewWindow("College Recommender")
	win.Resize(fyne.NewSize(1024, 768))

	cfg, err := recommender.LoadConfig("")
	if err != nil {
		showFatalError(win, fmt.Errorf("load config: %w", err))
		return
	}

	loggerBinding := binding.NewString()
	logCapture := newLogCapture(loggerBinding, 300)
	logger := log.New(io.MultiWriter(os.Stdout, logCapture), "", log.LstdFlags)

	session := recommender.NewSession(cfg, logger)

	cfgMu := sync.Mutex{}
	saveConfig := func() {
		cfgMu.Lock()
		defer cfgMu.Unlock()
		if err := recommender.SaveConfig("", cfg); err != nil {
			logger.Printf("save config: %v", err)
		}
	}
	defer saveConfig()

	statusLabel := widget.NewLabel("No data loaded")

	dataDirEntry := widget.NewEntry()
	dataDirEntry.SetText(cfg.DataDir)
	dataDirEntry.SetPlaceHolder("Directory of cutoff CSV/TSV files")

	rankEntry := widget.NewEntry()
	rankEntry.SetPlaceHolder("Your rank, e.g. 1500")

	categorySelect := widget.NewSelect([]string{
		string(recommender.CategoryGeneral),
		string(recommender.CategoryOpen),
		string(recommender.CategoryOBC),
		string(recommender.CategorySC),
		string(recommender.CategoryST),
		string(recommender.CategoryEWS),
	}, nil)
	categorySelect.SetSelected(string(recommender.CategoryGeneral))

	branchSelect := widget.NewSelect([]string{allBranchesLabel}, nil)
	branchSelect.SetSelected(allBranchesLabel)

	minProbSlider := widget.NewSlider(0, 1)
	minProbSlider.Step = 0.05
	minProbLabel := widget.NewLabel("Min probability: 0.00")
	minProbSlider.OnChanged = func(v float64) {
		minProbLabel.SetText(fmt.Sprintf("Min probability: %.2f", v))
	}

	var entries []recommender.Entry
	var entriesMu sync.Mutex

	var tableData [][]string
	resultTable := widget.NewTable(
		func() (int, int) {
			if len(tableData) == 0 {
				return 0, 0
			}
			return len(tableData), len(tableData[0])
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			if len(tableData) == 0 || id.Row >= len(tableData) || id.Col >= len(tableData[id.Row]) {
				return
			}
			label := obj.(*widget.Label)
			label.SetText(tableData[id.Row][id.Col])
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				label.TextStyle = fyne.TextStyle{}
			}
		},
	)
	resultTable.OnSelected = func(id widget.TableCellID) {
		if id.Row <= 0 {
			return
		}
		entriesMu.Lock()
		if id.Row-1 < len(entries) {
			e := entries[id.Row-1]
			dialog.ShowInformation("Details", formatEntry(e), win)
		}
		entriesMu.Unlock()
	}

	updateTable := func(list []recommender.Entry) {
		entriesMu.Lock()
		entries = list
		entriesMu.Unlock()
		tableData = buildTableData(list)
		fyne.CurrentApp().Driver().CallOnMainThread(func() {
			if len(tableData) > 0 {
				for col := range tableData[0] {
					width := float32(120)
					if col == 0 {
						width = 280
					}
					resultTable.SetColumnWidth(col, width)
				}
			}
			resultTable.Refresh()
		})
	}

	refreshChoices := func() {
		table := session.Table()
		if table == nil {
			return
		}
		branches := table.Branches()
		options := make([]string, 0, len(branches)+1)
		options = append(options, allBranchesLabel)
		for _, b := range branches {
			options = append(options, string(b))
		}
		fyne.CurrentApp().Driver().CallOnMainThread(func() {
			branchSelect.Options = options
			branchSelect.SetSelected(allBranchesLabel)
			branchSelect.Refresh()
		})
	}

	var loadDataBtn *widget.Button
	loadDataBtn = widget.NewButton("Load Data", func() {
		dir := strings.TrimSpace(dataDirEntry.Text)
		if dir == "" {
			showError(win, fmt.Errorf("data directory is empty"))
			return
		}
		cfgMu.Lock()
		cfg.DataDir = dir
		localCfg := cfg
		cfgMu.Unlock()
		session.UpdateConfig(localCfg)
		saveConfig()

		loadDataBtn.Disable()
		statusLabel.SetText("Loading data...")
		go func() {
			start := time.Now()
			report, err := session.LoadData()
			elapsed := time.Since(start)
			fyne.CurrentApp().Driver().CallOnMainThread(func() {
				loadDataBtn.Enable()
				if err != nil {
					statusLabel.SetText("Load failed")
					showError(win, err)
					return
				}
				statusLabel.SetText(fmt.Sprintf("%d records, %d colleges (%.2fs)",
					report.RecordCount, report.CollegeCount, elapsed.Seconds()))
			})
			if err == nil {
				refreshChoices()
			}
		}()
	})

	loadModelBtn := widget.NewButton("Load Model", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				showError(win, err)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			rc.Close()
			go func() {
				if err := session.LoadModel(path); err != nil {
					fyne.CurrentApp().Driver().CallOnMainThread(func() {
						showError(win, err)
					})
					return
				}
				meta := session.Metadata()
				fyne.CurrentApp().Driver().CallOnMainThread(func() {
					statusLabel.SetText(fmt.Sprintf("Model: %d records, %d colleges",
						meta.RecordCount, meta.CollegeCount))
				})
				refreshChoices()
			}()
		}, win)
		fd.SetFilter(storageFilter([]string{".json"}))
		fd.Show()
	})

	saveModelBtn := widget.NewButton("Save Model", func() {
		go func() {
			err := session.SaveModel("")
			fyne.CurrentApp().Driver().CallOnMainThread(func() {
				if err != nil {
					showError(win, err)
					return
				}
				statusLabel.SetText("Model saved")
			})
		}()
	})

	var recommendBtn *widget.Button
	recommendBtn = widget.NewButton("Recommend", func() {
		rank, err := strconv.Atoi(strings.TrimSpace(rankEntry.Text))
		if err != nil || rank <= 0 {
			showError(win, fmt.Errorf("enter a positive rank"))
			return
		}
		query := recommender.Query{
			Rank:           rank,
			Category:       recommender.Category(categorySelect.Selected),
			MinProbability: minProbSlider.Value,
		}
		if branchSelect.Selected != "" && branchSelect.Selected != allBranchesLabel {
			query.BranchFilter = []recommender.Branch{recommender.Branch(branchSelect.Selected)}
		}
		recommendBtn.Disable()
		statusLabel.SetText("Scoring...")
		go func(q recommender.Query) {
			list, err := session.Recommend(q)
			if err != nil {
				fyne.CurrentApp().Driver().CallOnMainThread(func() {
					recommendBtn.Enable()
					statusLabel.SetText("Query failed")
					showError(win, err)
				})
				return
			}
			updateTable(list)
			fyne.CurrentApp().Driver().CallOnMainThread(func() {
				recommendBtn.Enable()
				statusLabel.SetText(fmt.Sprintf("%d recommendations", len(list)))
			})
		}(query)
	})

	clearBtn := widget.NewButton("Clear", func() {
		updateTable(nil)
		statusLabel.SetText("Cleared")
	})

	exportBtn := widget.NewButton("Export CSV", func() {
		if len(tableData) <= 1 {
			showError(win, fmt.Errorf("no results to export"))
			return
		}
		fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				showError(win, err)
				return
			}
			if uc == nil {
				return
			}
			defer uc.Close()
			writer := csv.NewWriter(uc)
			for _, row := range tableData {
				if err := writer.Write(row); err != nil {
					showError(win, err)
					return
				}
			}
			writer.Flush()
			if err := writer.Error(); err != nil {
				showError(win, err)
				return
			}
		}, win)
		fd.SetFileName("recommendations.csv")
		fd.SetFilter(storageFilter([]string{".csv"}))
		fd.Show()
	})

	summaryBtn := widget.NewButton("Model Info", func() {
		table := session.Table()
		if table == nil {
			showError(win, fmt.Errorf("no data loaded"))
			return
		}
		meta := session.Metadata()
		var b strings.Builder
		fmt.Fprintf(&b, "Records: %d\nColleges: %d\nVFM rows matched: %d\n",
			meta.RecordCount, meta.CollegeCount, meta.VFMMatched)
		fmt.Fprintf(&b, "Categories: %v\n", table.Categories())
		fmt.Fprintf(&b, "Branches: %v\n", table.Branches())
		dialog.ShowInformation("Model", b.String(), win)
	})

	logLabel := widget.NewLabelWithData(loggerBinding)
	logLabel.Wrapping = fyne.TextWrapWord
	logContainer := container.NewVScroll(logLabel)
	logContainer.SetMinSize(fyne.NewSize(200, 120))

	controls := container.NewVBox(
		container.NewVBox(widget.NewLabel("Dataset"), dataDirEntry),
		container.NewHBox(loadDataBtn, loadModelBtn, saveModelBtn, summaryBtn, statusLabel),
		widget.NewSeparator(),
		container.NewVBox(
			widget.NewLabel("Query"),
			rankEntry,
			categorySelect,
			branchSelect,
			container.NewHBox(minProbLabel, minProbSlider),
			container.NewHBox(recommendBtn, clearBtn, exportBtn),
		),
		widget.NewSeparator(),
		widget.NewLabel("Log"),
		logContainer,
	)

	root := container.NewHSplit(controls, resultTable)
	root.Offset = 0.35
	win.SetContent(root)

	win.ShowAndRun()
}

func showFatalError(win fyne.Window, err error) {
	content := widget.NewLabel(err.Error())
	win.SetContent(content)
	dialog.ShowError(err, win)
	win.ShowAndRun()
}

func showError(win fyne.Window, err error) {
	if err != nil {
		dialog.ShowError(err, win)
	}
}

func storageFilter(exts []string) fyne.FileFilter {
	return storage.NewExtensionFileFilter(exts)
}

func buildTableData(entries []recommender.Entry) [][]string {
	header := []string{"College", "Branch", "Chance", "Probability", "VFM", "Composite", "Window"}
	data := make([][]string, 1, len(entries)+1)
	data[0] = header
	for _, e := range entries {
		vfm := "n/a"
		if e.HasVFM {
			vfm = fmt.Sprintf("%.1f", e.VFMScore)
		}
		data = append(data, []string{
			e.CollegeCanonical,
			string(e.Branch),
			string(e.Chance),
			fmt.Sprintf("%.2f", e.Probability),
			vfm,
			fmt.Sprintf("%.3f", e.Composite),
			fmt.Sprintf("%d-%d", e.OpeningRank, e.ClosingRank),
		})
	}
	return data
}

func formatEntry(e recommender.Entry) string {
	vfm := "n/a"
	if e.HasVFM {
		vfm = recommender.VFMStars(e.VFMScore)
	}
	return fmt.Sprintf("%s\n%s (%s)\n\nChance: %s (p=%.2f)\nValue for money: %s\nComposite: %.3f\nRank window: %d-%d",
		e.CollegeCanonical, e.Branch, e.Category, e.Chance, e.Probability, vfm, e.Composite, e.OpeningRank, e.ClosingRank)
}

type logCapture struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	binding binding.String
}

func newLogCapture(b binding.String, limit int) *logCapture {
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := string(p)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	for _, part := range parts {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	joined := strings.Join(l.lines, "\n")
	_ = l.binding.Set(joined)
	return len(p), nil
}

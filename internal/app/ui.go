package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"yashubustudio/hccmapper/hcc"
)

const logDebounceInterval = 150 * time.Millisecond

type uiState struct {
	service *hcc.Service
	logger  zerolog.Logger
	logs    *logBuffer

	w          fyne.Window
	input      *widget.Entry
	docName    *widget.Entry
	log        *widget.Entry
	status     *widget.Label
	progress   *widget.ProgressBarInfinite
	resTbl     *widget.Table
	termTbl    *widget.Table
	statusBind binding.String
	logBind    binding.String

	resCols  []tableColumn[hcc.ClassifiedResult]
	termCols []tableColumn[hcc.CandidateTerm]
	report   *hcc.Report

	processBtn *widget.Button
	loadBtn    *widget.Button
	jsonBtn    *widget.Button
	csvBtn     *widget.Button
}

func buildUI(a fyne.App, svc *hcc.Service, logger zerolog.Logger, logs *logBuffer) *uiState {
	u := &uiState{service: svc, logger: logger, logs: logs}
	u.w = a.NewWindow("HCC Mapper")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set(codebookSummary(svc.Codebook()))
	u.logBind = binding.NewString()
	go u.logUpdateLoop()

	u.input = widget.NewMultiLineEntry()
	u.input.Wrapping = fyne.TextWrapWord
	u.input.SetPlaceHolder("Paste clinical document text")
	u.docName = widget.NewEntry()
	u.docName.SetPlaceHolder("Document name")

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarInfinite()
	u.progress.Hide()

	u.processBtn = widget.NewButtonWithIcon("Process", theme.ConfirmIcon(), func() { u.onProcess() })
	u.loadBtn = widget.NewButtonWithIcon("Open document", theme.FolderOpenIcon(), func() { u.onLoadFile() })
	u.jsonBtn = widget.NewButtonWithIcon("Export JSON", theme.DocumentSaveIcon(), func() { u.onExportJSON() })
	u.csvBtn = widget.NewButtonWithIcon("Export CSV", theme.DocumentSaveIcon(), func() { u.onExportCSV() })
	codebookBtn := widget.NewButtonWithIcon("Codebook", theme.InfoIcon(), func() { u.showCodebook() })

	u.resCols = resultColumns()
	u.termCols = termColumns()
	u.resTbl = newColumnTable(u.resCols, func() []hcc.ClassifiedResult {
		if u.report == nil {
			return nil
		}
		return u.report.HCCCodes
	})
	u.termTbl = newColumnTable(u.termCols, func() []hcc.CandidateTerm {
		if u.report == nil {
			return nil
		}
		return u.report.MedicalTerms
	})

	left := container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Document", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			u.docName,
		),
		container.NewVBox(
			container.NewGridWithColumns(2, u.processBtn, u.loadBtn),
			container.NewGridWithColumns(3, u.jsonBtn, u.csvBtn, codebookBtn),
			u.progress,
			u.status,
		),
		nil, nil,
		u.input,
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("HCC codes", u.resTbl),
		container.NewTabItem("Terms", u.termTbl),
		container.NewTabItem("Log", u.log),
	)

	split := container.NewHSplit(left, tabs)
	split.Offset = 0.35
	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1180, 760))
	u.setExportEnabled(false)
	return u
}

func newColumnTable[T any](cols []tableColumn[T], rows func() []T) *widget.Table {
	tbl := widget.NewTable(
		func() (int, int) { return len(rows()) + 1, len(cols) },
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Truncation = fyne.TextTruncateEllipsis
			return lbl
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			text, header := cell(cols, rows(), id.Row, id.Col)
			lbl.TextStyle = fyne.TextStyle{Bold: header}
			lbl.SetText(text)
		},
	)
	for i, col := range cols {
		tbl.SetColumnWidth(i, col.Width)
	}
	return tbl
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logs.Updates():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			_ = u.logBind.Set(u.logs.String())
		}
	}
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		if b {
			u.processBtn.Disable()
			u.loadBtn.Disable()
			u.progress.Show()
			u.progress.Start()
		} else {
			u.processBtn.Enable()
			u.loadBtn.Enable()
			u.progress.Stop()
			u.progress.Hide()
		}
	})
}

func (u *uiState) setExportEnabled(on bool) {
	if on {
		u.jsonBtn.Enable()
		u.csvBtn.Enable()
		return
	}
	u.jsonBtn.Disable()
	u.csvBtn.Disable()
}

func (u *uiState) onProcess() {
	text := u.input.Text
	if strings.TrimSpace(text) == "" {
		dialog.ShowInformation("Nothing to process", "Paste or open a document first.", u.w)
		return
	}
	name := strings.TrimSpace(u.docName.Text)
	if name == "" {
		name = "untitled"
	}
	u.setBusy(true)
	_ = u.statusBind.Set("processing...")

	go func() {
		start := time.Now()
		report, err := u.service.Process(context.Background(), name, text)
		u.setBusy(false)
		if err != nil {
			_ = u.statusBind.Set("failed")
			fyne.Do(func() { dialog.ShowError(err, u.w) })
			return
		}
		_ = u.statusBind.Set(reportSummary(report, time.Since(start)))
		fyne.Do(func() {
			u.report = report
			u.resTbl.Refresh()
			u.termTbl.Refresh()
			u.setExportEnabled(true)
		})
	}()
}

func (u *uiState) onLoadFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		text, err := hcc.ReadDocument(path)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.input.SetText(text)
		u.docName.SetText(hcc.DocumentName(path))
		u.logger.Info().Str("path", filepath.Base(path)).Int("bytes", len(text)).Msg("document opened")
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".gz"}))
	fd.Show()
}

func (u *uiState) onExportJSON() {
	report := u.report
	if report == nil {
		return
	}
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		enc := json.NewEncoder(uc)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.logger.Info().Str("run_id", report.RunID).Str("path", uc.URI().Path()).Msg("report exported")
	}, u.w)
	fd.SetFileName(report.DocumentName + ".json")
	fd.Show()
}

func (u *uiState) onExportCSV() {
	report := u.report
	if report == nil {
		return
	}
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		if err := hcc.WriteResultsCSV(uc, report.HCCCodes); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.logger.Info().Str("run_id", report.RunID).Int("rows", len(report.HCCCodes)).Msg("results exported")
	}, u.w)
	fd.SetFileName(report.DocumentName + ".csv")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}

func (u *uiState) showCodebook() {
	cb := u.service.Codebook()
	var b strings.Builder
	for _, key := range cb.Keys() {
		entry, _ := cb.Lookup(key)
		fmt.Fprintf(&b, "%-24s %-8s %s\n", key, entry.Code, entry.Description)
	}
	body := widget.NewLabel(b.String())
	body.TextStyle = fyne.TextStyle{Monospace: true}
	scroll := container.NewVScroll(body)
	scroll.SetMinSize(fyne.NewSize(640, 420))
	dialog.NewCustom(codebookSummary(cb), "Close", scroll, u.w).Show()
}

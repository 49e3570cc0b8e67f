package excel

import (
	"fmt"
	"io"

	"cardiorisk/domain/prediction"
	"cardiorisk/internal/eda"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported assessment workbook
const (
	SheetPatient  = "Patient"
	SheetModels   = "Models"
	SheetEnsemble = "Final Assessment"
)

// WriteAssessment writes one assessment as an XLSX workbook. The ensemble sheet
// is only present when the assessment carries an ensemble result.
func WriteAssessment(w io.Writer, a *prediction.Assessment) error {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the patient sheet
	if err := f.SetSheetName("Sheet1", SheetPatient); err != nil {
		return err
	}

	patient := [][]interface{}{{"Feature", "Value", "Meaning"}}
	for _, fv := range a.Record.Describe() {
		patient = append(patient, []interface{}{fv.Label, fv.Value, fv.Display})
	}
	if err := writeRows(f, SheetPatient, patient); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetModels); err != nil {
		return err
	}
	models := [][]interface{}{{"Model", "Prediction", "Disease Probability", "Confidence", "Error"}}
	for _, o := range a.Outcomes {
		if o.Prediction == nil {
			models = append(models, []interface{}{o.Name, "", "", "", o.Error})
			continue
		}
		p := o.Prediction
		models = append(models, []interface{}{o.Name, p.Label.String(), p.Probability, p.Confidence, ""})
	}
	if err := writeRows(f, SheetModels, models); err != nil {
		return err
	}

	if a.Ensemble != nil {
		if _, err := f.NewSheet(SheetEnsemble); err != nil {
			return err
		}
		e := a.Ensemble
		summary := [][]interface{}{
			{"Assessment", a.ID.String()},
			{"Created", a.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST")},
			{"Majority Vote", e.Label.String()},
			{"Average Probability", e.AverageProbability},
			{"Model Agreement", e.Agreement()},
		}
		if err := writeRows(f, SheetEnsemble, summary); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Sheet names of an exported dataset summary workbook
const (
	SheetOverview    = "Overview"
	SheetRanking     = "Target Correlation"
	SheetCorrelation = "Correlation Matrix"
	SheetDescribe    = "Describe"
)

// WriteDatasetSummary writes the EDA report and the per-feature describe()
// tables as an XLSX workbook. Undefined correlations are left blank.
func WriteDatasetSummary(w io.Writer, report *eda.Report, features []*eda.FeatureAnalysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return err
	}
	o := report.Overview
	overview := [][]interface{}{
		{"Source", o.Source},
		{"Records", o.Records},
		{"Total Features", o.TotalFeatures},
		{"Input Features", o.InputFeatures},
		{"Output Features", o.OutputFields},
		{eda.LabelDisease, o.Positive},
		{eda.LabelNoDisease, o.Negative},
	}
	if err := writeRows(f, SheetOverview, overview); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetRanking); err != nil {
		return err
	}
	ranking := [][]interface{}{{"Feature", "Correlation with target", "p-value"}}
	for _, fc := range report.TargetRanking {
		ranking = append(ranking, []interface{}{string(fc.Feature), coefCell(fc.Correlation), coefCell(fc.PValue)})
	}
	if err := writeRows(f, SheetRanking, ranking); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetCorrelation); err != nil {
		return err
	}
	m := report.Correlation
	header := []interface{}{""}
	for _, c := range m.Columns {
		header = append(header, string(c))
	}
	matrix := [][]interface{}{header}
	for i, row := range m.Values {
		line := []interface{}{string(m.Columns[i])}
		for _, v := range row {
			line = append(line, coefCell(v))
		}
		matrix = append(matrix, line)
	}
	if err := writeRows(f, SheetCorrelation, matrix); err != nil {
		return err
	}

	if len(features) > 0 {
		if _, err := f.NewSheet(SheetDescribe); err != nil {
			return err
		}
		describe := [][]interface{}{{"Feature", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
		for _, fa := range features {
			s := fa.Summary
			describe = append(describe, []interface{}{string(fa.Feature), s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max})
		}
		if err := writeRows(f, SheetDescribe, describe); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func coefCell(c eda.Coef) interface{} {
	if !c.Valid() {
		return ""
	}
	return float64(c)
}

// Package settlement renders the final settlement statement for a submitted
// claim as an Excel workbook: trip summary, daily-allowance breakdown,
// expense lines and the payable/recoverable total.
package settlement

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

const sheetName = "Settlement"

const dateLayout = "2006-01-02"

// Generator builds settlement statement workbooks.
type Generator struct {
	companyName string
	logger      *zap.Logger
}

// NewGenerator creates a settlement statement generator.
func NewGenerator(companyName string, logger *zap.Logger) *Generator {
	return &Generator{
		companyName: companyName,
		logger:      logger,
	}
}

// Generate writes the statement for the given claim and its reconciliation
// result to outputPath. typeNames maps expense type ids to display names;
// unknown ids fall back to the numeric id.
func (g *Generator) Generate(
	app *entity.TravelApplication,
	claim *entity.Claim,
	comp *entity.ClaimComputation,
	typeNames map[int64]string,
	outputPath string,
) error {
	g.logger.Info("Generating settlement statement",
		zap.Int64("claim_id", claim.ID),
		zap.Int64("application_id", app.ID))

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than deleted so the workbook
	// always has exactly one sheet.
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	g.setCell(f, "A1", g.companyName)
	g.setCell(f, "A2", "Travel Expense Settlement Statement")
	g.setCell(f, "A4", "Claim ID")
	g.setCell(f, "B4", claim.ID)
	g.setCell(f, "A5", "Application ID")
	g.setCell(f, "B5", app.ID)
	g.setCell(f, "A6", "Applicant")
	g.setCell(f, "B6", app.ApplicantID)
	g.setCell(f, "A7", "Purpose")
	g.setCell(f, "B7", app.Purpose)
	if claim.SubmittedAt != nil {
		g.setCell(f, "A8", "Submitted On")
		g.setCell(f, "B8", claim.SubmittedAt.Format(dateLayout))
	}

	row := 10
	row = g.writeBreakdown(f, comp, row)
	row = g.writeExpenses(f, claim, typeNames, row)
	g.writeTotals(f, comp, row)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save statement: %w", err)
	}

	g.logger.Info("Settlement statement generated",
		zap.String("output_path", outputPath))
	return nil
}

// writeBreakdown renders the per-day daily-allowance table and returns the
// next free row.
func (g *Generator) writeBreakdown(f *excelize.File, comp *entity.ClaimComputation, row int) int {
	g.setCell(f, cell("A", row), "Daily Allowance")
	row++
	g.setCell(f, cell("A", row), "Date")
	g.setCell(f, cell("B", row), "Hours")
	g.setCell(f, cell("C", row), "Allowance")
	g.setCell(f, cell("D", row), "Incidentals")
	row++

	for _, day := range comp.Breakdown {
		g.setCell(f, cell("A", row), day.Date.Format(dateLayout))
		g.setCell(f, cell("B", row), day.DurationHours.StringFixed(2))
		g.setCell(f, cell("C", row), day.DAAmount.StringFixed(2))
		g.setCell(f, cell("D", row), day.IncidentalAmount.StringFixed(2))
		row++
	}

	g.setCell(f, cell("A", row), "Subtotal")
	g.setCell(f, cell("C", row), comp.TotalDA.StringFixed(2))
	g.setCell(f, cell("D", row), comp.TotalIncidental.StringFixed(2))
	return row + 2
}

// writeExpenses renders the claim item table and returns the next free row.
func (g *Generator) writeExpenses(f *excelize.File, claim *entity.Claim, typeNames map[int64]string, row int) int {
	g.setCell(f, cell("A", row), "Expenses")
	row++
	g.setCell(f, cell("A", row), "Date")
	g.setCell(f, cell("B", row), "Type")
	g.setCell(f, cell("C", row), "Source")
	g.setCell(f, cell("D", row), "Amount")
	g.setCell(f, cell("E", row), "Receipt")
	row++

	for _, item := range claim.Items {
		name, ok := typeNames[item.ExpenseType]
		if !ok {
			name = fmt.Sprintf("type %d", item.ExpenseType)
		}
		receipt := "No"
		if item.HasReceipt {
			receipt = "Yes"
		}
		g.setCell(f, cell("A", row), item.ExpenseDate.Format(dateLayout))
		g.setCell(f, cell("B", row), name)
		g.setCell(f, cell("C", row), item.Source)
		g.setCell(f, cell("D", row), item.Amount.StringFixed(2))
		g.setCell(f, cell("E", row), receipt)
		row++
	}

	return row + 1
}

func (g *Generator) writeTotals(f *excelize.File, comp *entity.ClaimComputation, row int) {
	g.setCell(f, cell("A", row), "Gross Total")
	g.setCell(f, cell("B", row), comp.GrossTotal().StringFixed(2))
	row++
	g.setCell(f, cell("A", row), "Advance Received")
	g.setCell(f, cell("B", row), comp.AdvanceReceived.StringFixed(2))
	row++

	label := "Amount Payable to Employee"
	amount := comp.FinalAmount()
	if comp.Recoverable() {
		label = "Amount Recoverable from Employee"
		amount = amount.Abs()
	}
	g.setCell(f, cell("A", row), label)
	g.setCell(f, cell("B", row), amount.StringFixed(2))
}

// setCell sets a cell value, logging failures instead of aborting the
// statement.
func (g *Generator) setCell(f *excelize.File, cellRef string, value interface{}) {
	if err := f.SetCellValue(sheetName, cellRef, value); err != nil {
		g.logger.Warn("Failed to set cell value",
			zap.String("cell", cellRef),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// Package export renders ledger statements as spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

const (
	SheetSummary      = "Resumo"
	SheetTransactions = "Transacoes"

	amountFormat = "#,##0.00"
)

var transactionHeader = []string{"ID", "Data", "Tipo", "Descrição", "Cliente", "Status", "Valor (R$)", "Agendado para"}

func reais(c money.Cents) float64 { return c.Decimal().InexactFloat64() }

func transactionRow(tx model.Transaction) []string {
	scheduled := ""
	if tx.ScheduledDate != nil {
		scheduled = model.FormatDate(*tx.ScheduledDate)
	}
	return []string{
		tx.ID,
		model.FormatDate(tx.Date),
		string(tx.Type),
		tx.Description,
		tx.ClientName,
		string(tx.Status),
		tx.Amount.Decimal().StringFixed(2),
		scheduled,
	}
}

// WriteStatement writes an xlsx workbook with a summary sheet and one row per
// transaction.
func WriteStatement(w io.Writer, snap ledger.Snapshot, txs []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTransactions); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("bold style: %w", err)
	}
	numFmt := amountFormat
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	summary := [][]any{
		{"Data virtual", model.FormatDate(snap.CurrentVirtualDate)},
		{"Capital (R$)", reais(snap.BalanceCapital)},
		{"Capital líquido (R$)", reais(snap.LiquidCapital)},
		{"Rendimentos (R$)", reais(snap.BalanceResults)},
		{"Total aportado (R$)", reais(snap.TotalContributed)},
		{"Total resgatado (R$)", reais(snap.TotalRedeemed)},
		{"Último rendimento", money.FormatPercent(snap.LastPerformanceFactor)},
		{"Pendências", snap.PendingApprovals},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B2", "B6", amount); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 24); err != nil {
		return err
	}

	header := make([]any, len(transactionHeader))
	for i, h := range transactionHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetTransactions, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetTransactions, "A1", "H1", bold); err != nil {
		return err
	}
	for i, tx := range txs {
		rec := transactionRow(tx)
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		row[6] = reais(tx.Amount)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetTransactions, cell, &row); err != nil {
			return fmt.Errorf("write transaction %s: %w", tx.ID, err)
		}
	}
	if len(txs) > 0 {
		if err := f.SetCellStyle(SheetTransactions, "G2", fmt.Sprintf("G%d", len(txs)+1), amount); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetTransactions, "D", "D", 48); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteTransactionsCSV writes transactions as CSV with the statement header.
func WriteTransactionsCSV(w io.Writer, txs []model.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(transactionHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := writer.Write(transactionRow(tx)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

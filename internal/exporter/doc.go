// Package exporter writes dashboard data out of the process.
//
// CSVWriter persists the four dataset tables in the column layout the loader
// reads back, and EncodeEntity streams a single table to any writer.
//
// WorkbookExporter builds an .xlsx workbook holding the session tables and
// the computed dashboard views.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	err := writer.WriteTables(tables)
//
//	wb := exporter.NewWorkbookExporter()
//	err = wb.Export(w, tables, overview, topPerformers)
package exporter

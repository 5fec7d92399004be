package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/repositories"
)

const rosterSheet = "Students"

var rosterHeader = []interface{}{"ID", "Name", "Email", "Department", "Courses"}

type rosterService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewRosterService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) RosterService {
	return &rosterService{repo: repo, db: db, logger: logger}
}

func (s *rosterService) ExportStudents(ctx context.Context, w io.Writer) error {
	students, err := s.repo.Student().List(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(rosterSheet, "A1", &rosterHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(rosterSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, student := range students {
		titles := make([]string, 0, len(student.Courses))
		for _, course := range student.Courses {
			titles = append(titles, course.Title)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{student.ID, student.Name, student.Email, student.DepartmentName(), strings.Join(titles, ", ")}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(rosterSheet, "B", "E", 28); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Student roster exported", "rows", len(students))
	return nil
}

package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/sheet"
	"StaffHub/storage/database"
)

// Loads sections, then accounts, from two workbooks. A missing or unreadable
// workbook is reported and skipped; the other one is still imported.
func main() {
	sectionsPath := flag.String("sections", "sections.xlsx", "workbook with name_ar, name_en columns")
	employeesPath := flag.String("employees", "employees.xlsx", "workbook with username, password, role columns")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	if err := database.Init(); err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = database.Close(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	svc := service.Directory()

	if rows, err := sheet.ReadRows(*sectionsPath, 2); err != nil {
		logger.Logger.Error("Skipping sections import", zap.String("file", *sectionsPath), zap.Error(err))
	} else {
		sections := make([]dto.SectionRow, 0, len(rows))
		for _, r := range rows {
			sections = append(sections, dto.SectionRow{NameAr: r[0], NameEn: r[1]})
		}
		if _, err := svc.ImportSections(ctx, sections); err != nil {
			logger.Logger.Fatal("Sections import failed", zap.Error(err))
		}
	}

	if rows, err := sheet.ReadRows(*employeesPath, 3); err != nil {
		logger.Logger.Error("Skipping users import", zap.String("file", *employeesPath), zap.Error(err))
	} else {
		employees := make([]dto.EmployeeRow, 0, len(rows))
		for _, r := range rows {
			employees = append(employees, dto.EmployeeRow{Username: r[0], Password: r[1], Role: r[2]})
		}
		if _, err := svc.ImportEmployees(ctx, employees); err != nil {
			logger.Logger.Fatal("Users import failed", zap.Error(err))
		}
	}
}

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reservio/internal/domain"
	"reservio/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// OccupancyReporter renders a rooms-by-days occupancy grid to XLSX.
type OccupancyReporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewOccupancyReporter(repo domain.Repository, path string, logger *zerolog.Logger) *OccupancyReporter {
	return &OccupancyReporter{
		repo:   repo,
		path:   path,
		logger: logger,
	}
}

// GenerateOccupancy writes the occupancy sheet for [start, end) and
// returns the file path.
func (r *OccupancyReporter) GenerateOccupancy(ctx context.Context, hotelID int64, start, end time.Time) (string, error) {
	if err := os.MkdirAll(r.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating report directory: %v", err)
	}

	hotel, err := r.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return "", fmt.Errorf("error getting hotel: %v", err)
	}

	rooms, err := r.repo.GetRoomsByHotel(ctx, hotelID)
	if err != nil {
		return "", fmt.Errorf("error getting rooms: %v", err)
	}

	reservations, err := r.repo.GetReservationsByDateRange(ctx, hotelID, start, end)
	if err != nil {
		return "", fmt.Errorf("error getting reservations: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Occupancy"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s: %s - %s",
		hotel.Name, start.Format("02.01.2006"), end.AddDate(0, 0, -1).Format("02.01.2006")))

	dateCols := r.writeDateHeaders(f, sheetName, start, end)
	r.writeRoomHeaders(f, sheetName, rooms)
	r.writeOccupancy(f, sheetName, rooms, reservations, start, end, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 16)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("occupancy_%d_%s_to_%s.xlsx",
		hotelID,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"))
	filePath := filepath.Join(r.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	if r.logger != nil {
		r.logger.Info().Str("file_path", filePath).Msg("Occupancy report created")
	}
	return filePath, nil
}

func (r *OccupancyReporter) writeDateHeaders(f *excelize.File, sheetName string, start, end time.Time) map[string]int {
	col := 2
	current := start
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for current.Before(end) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("02.01"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[current.Format("2006-01-02")] = col

		col++
		current = current.AddDate(0, 0, 1)
	}
	return dateCols
}

func (r *OccupancyReporter) writeRoomHeaders(f *excelize.File, sheetName string, rooms []*models.Room) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, room := range rooms {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("Room %s (cap %d)", room.Number, room.Capacity))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		row++
	}
}

func (r *OccupancyReporter) writeOccupancy(
	f *excelize.File, sheetName string,
	rooms []*models.Room,
	reservations []*models.Reservation,
	start, end time.Time,
	dateCols map[string]int,
) {
	byRoom := make(map[int64][]*models.Reservation)
	for _, res := range reservations {
		if res.Status == models.StatusCancelled {
			continue
		}
		byRoom[res.RoomID] = append(byRoom[res.RoomID], res)
	}

	occupiedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	pendingStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})

	row := 3
	for _, room := range rooms {
		for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
			col, ok := dateCols[day.Format("2006-01-02")]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)

			res := reservationForNight(byRoom[room.ID], day)
			if res == nil {
				continue
			}

			_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s\n%s", res.GuestName, res.Confirmation))
			if res.Status == models.StatusPending {
				_ = f.SetCellStyle(sheetName, cell, cell, pendingStyle)
			} else {
				_ = f.SetCellStyle(sheetName, cell, cell, occupiedStyle)
			}
		}
		row++
	}
}

// reservationForNight returns the reservation occupying the room on the
// given night, checkout day excluded.
func reservationForNight(reservations []*models.Reservation, night time.Time) *models.Reservation {
	for _, res := range reservations {
		if !night.Before(res.CheckIn) && night.Before(res.CheckOut) {
			return res
		}
	}
	return nil
}

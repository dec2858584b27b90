package store

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ti-dashboard/ti-data/internal/model"
)

var grainSchema = arrow.NewSchema([]arrow.Field{
	{Name: "game_id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "game_name", Type: arrow.BinaryTypes.String},
	{Name: "game_max_victory_points", Type: arrow.PrimitiveTypes.Int64},
	{Name: "game_n_players", Type: arrow.PrimitiveTypes.Int64},
	{Name: "start_date", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
	{Name: "end_date", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
	{Name: "rounds", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "player_name", Type: arrow.BinaryTypes.String},
	{Name: "faction_short_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "faction_full_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "victory_points", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "starting_position", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "participated", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "winner", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "cumulated_n_participated", Type: arrow.PrimitiveTypes.Int64},
	{Name: "cumulated_n_winner", Type: arrow.PrimitiveTypes.Int64},
	{Name: "cumulated_overall_win_rate", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

// GrainToParquet encodes the expanded (game x player) table as a Parquet file.
func GrainToParquet(entries []model.PlayerGameEntry) ([]byte, error) {
	pool := memory.NewGoAllocator()
	rb := array.NewRecordBuilder(pool, grainSchema)
	defer rb.Release()

	gameID := rb.Field(0).(*array.Int64Builder)
	gameName := rb.Field(1).(*array.StringBuilder)
	maxVP := rb.Field(2).(*array.Int64Builder)
	nPlayers := rb.Field(3).(*array.Int64Builder)
	startDate := rb.Field(4).(*array.Date32Builder)
	endDate := rb.Field(5).(*array.Date32Builder)
	rounds := rb.Field(6).(*array.Int64Builder)
	player := rb.Field(7).(*array.StringBuilder)
	factionShort := rb.Field(8).(*array.StringBuilder)
	factionFull := rb.Field(9).(*array.StringBuilder)
	vp := rb.Field(10).(*array.Int64Builder)
	startPos := rb.Field(11).(*array.Int64Builder)
	participated := rb.Field(12).(*array.BooleanBuilder)
	winner := rb.Field(13).(*array.BooleanBuilder)
	cumN := rb.Field(14).(*array.Int64Builder)
	cumW := rb.Field(15).(*array.Int64Builder)
	winRate := rb.Field(16).(*array.Float64Builder)

	for _, e := range entries {
		gameID.Append(int64(e.GameID))
		gameName.Append(e.GameName)
		maxVP.Append(int64(e.GameMaxVictoryPoints))
		nPlayers.Append(int64(e.GameNPlayers))
		appendDate(startDate, e.StartDate)
		appendDate(endDate, e.EndDate)
		appendInt(rounds, e.Rounds)
		player.Append(e.PlayerName)
		appendString(factionShort, e.FactionShortName)
		appendString(factionFull, e.FactionFullName)
		appendInt(vp, e.VictoryPoints)
		appendInt(startPos, e.StartingPosition)
		participated.Append(e.Participated)
		winner.Append(e.Winner)
		cumN.Append(int64(e.CumulatedNParticipated))
		cumW.Append(int64(e.CumulatedNWinner))
		if e.CumulatedOverallWinRate == nil {
			winRate.AppendNull()
		} else {
			winRate.Append(*e.CumulatedOverallWinRate)
		}
	}

	record := rb.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer, err := pqarrow.NewFileWriter(grainSchema, &buf, nil, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *JSONStore) WriteGrainParquet(rel string, entries []model.PlayerGameEntry) error {
	b, err := GrainToParquet(entries)
	if err != nil {
		return err
	}
	return writeAtomic(s.Path(rel), b)
}

func appendDate(b *array.Date32Builder, d *model.Date) {
	if d == nil {
		b.AppendNull()
		return
	}
	b.Append(arrow.Date32FromTime(d.Time))
}

func appendInt(b *array.Int64Builder, v *int) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(int64(*v))
}

func appendString(b *array.StringBuilder, v *string) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

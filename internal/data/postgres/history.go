package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/fatih/structs"
	"github.com/nemointern/darkpool-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const batchesTable = "processed_batches"
const matchesTable = "batch_matches"

type history struct {
	db *pgdb.DB
}

func NewHistory(db *pgdb.DB) data.History {
	return history{db: db}
}

func (q history) InsertBatch(b data.BatchRecord) error {
	stmt := squirrel.Insert(batchesTable).SetMap(structs.Map(b))
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to insert processed batch")
}

func (q history) InsertMatches(ms []data.MatchRecord) error {
	if len(ms) == 0 {
		return nil
	}

	stmt := squirrel.Insert(matchesTable).Columns(
		"batch_id", "buy_order_id", "sell_order_id", "matched_amount", "execution_price", "matched_at")
	for _, m := range ms {
		stmt = stmt.Values(m.BatchID, m.BuyOrderID, m.SellOrderID, m.MatchedAmount, m.ExecutionPrice, m.MatchedAt)
	}

	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to insert batch matches")
}

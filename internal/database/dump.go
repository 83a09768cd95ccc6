package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DumpCollection streams every document of a collection to writer, one
// document per entry, in "json" (newline-delimited) or "bson" format. Used
// for pre-migration safety dumps: a run replaces collections wholesale, so
// the previous contents are only recoverable from a dump.
func (m *Mongo) DumpCollection(ctx context.Context, collectionName string, writer io.Writer, format string) (int, error) {
	collection := m.Database.Collection(collectionName)

	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return count, fmt.Errorf("failed to decode document: %w", err)
		}

		var data []byte
		if format == "json" {
			data, err = json.Marshal(doc)
			if err != nil {
				return count, fmt.Errorf("failed to marshal to JSON: %w", err)
			}
			data = append(data, '\n')
		} else {
			data, err = bson.Marshal(doc)
			if err != nil {
				return count, fmt.Errorf("failed to marshal to BSON: %w", err)
			}
		}

		if _, err := writer.Write(data); err != nil {
			return count, fmt.Errorf("failed to write dump data: %w", err)
		}
		count++
	}

	if err := cursor.Err(); err != nil {
		return count, fmt.Errorf("cursor error: %w", err)
	}
	return count, nil
}

// LoadDump reads a dump produced by DumpCollection back into a collection,
// inserting in batches. When drop is set the collection is cleared first.
func (m *Mongo) LoadDump(ctx context.Context, collectionName string, reader io.Reader, format string, drop bool) (int, error) {
	store := m.Store(collectionName)

	if drop {
		if _, err := store.Clear(ctx); err != nil {
			return 0, err
		}
	}

	const batchSize = 1000
	var (
		batch []any
		total int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		n, err := store.Insert(insertCtx, batch)
		total += n
		batch = batch[:0]
		return err
	}

	switch format {
	case "json":
		decoder := json.NewDecoder(reader)
		for {
			var doc bson.M
			if err := decoder.Decode(&doc); err == io.EOF {
				break
			} else if err != nil {
				return total, fmt.Errorf("failed to decode JSON: %w", err)
			}
			batch = append(batch, doc)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	case "bson":
		var buf []byte
		chunk := make([]byte, 4096)
		for {
			n, err := reader.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return total, fmt.Errorf("failed to read BSON data: %w", err)
			}

			for len(buf) >= 4 {
				size := int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16 | int(buf[3])<<24
				if size <= 0 || len(buf) < size {
					break
				}
				var doc bson.M
				if err := bson.Unmarshal(buf[:size], &doc); err != nil {
					return total, fmt.Errorf("failed to unmarshal BSON: %w", err)
				}
				batch = append(batch, doc)
				buf = buf[size:]
				if len(batch) >= batchSize {
					if err := flush(); err != nil {
						return total, err
					}
				}
			}
		}
	default:
		return 0, fmt.Errorf("unknown dump format: %s", format)
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

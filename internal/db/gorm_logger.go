package db

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/arencloud/chione/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQuery is the duration above which a statement is logged at info level
// even when SQL tracing is off.
const slowQuery = 500 * time.Millisecond

// gormJSONLogger implements gorm's logger.Interface on top of logging.Logger.
// Raw SQL is never logged; only the operation and table.
type gormJSONLogger struct {
	l     logging.Logger
	level logger.LogLevel
}

func newGormLogger(l logging.Logger, lvl logger.LogLevel) *gormJSONLogger {
	return &gormJSONLogger{l: l.With("component", "gorm"), level: lvl}
}

func (g *gormJSONLogger) LogMode(l logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = l
	return &cp
}

func (g *gormJSONLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level < logger.Info {
		return
	}
	g.l.Info("gorm", "detail", msg, "args", data)
}

func (g *gormJSONLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level < logger.Warn {
		return
	}
	g.l.Error("gorm_warn", "detail", msg, "args", data)
}

func (g *gormJSONLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level < logger.Error {
		return
	}
	g.l.Error("gorm_error", "detail", msg, "args", data)
}

func (g *gormJSONLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	sql, rows := fc()
	dur := time.Since(begin)
	op, table := summarizeSQL(sql)
	fields := []any{"op", op, "table", table, "rows", rows, "durationMs", float64(dur) / 1e6, "caller", callerFileLine()}
	switch {
	case err != nil && errors.Is(err, gorm.ErrRecordNotFound):
		// lookups of unknown vaults are routine
		if g.level >= logger.Info {
			g.l.Debug("gorm_sql", append(fields, "notFound", true)...)
		}
	case err != nil:
		if g.level >= logger.Error {
			g.l.Error("gorm_sql", append(fields, "error", err.Error())...)
		}
	case dur > slowQuery && g.level >= logger.Warn:
		g.l.Info("gorm_slow_sql", fields...)
	case g.level >= logger.Info:
		g.l.Debug("gorm_sql", fields...)
	}
}

// callerFileLine returns the first caller outside of gorm itself.
func callerFileLine() string {
	for i := 2; i < 12; i++ {
		if _, file, line, ok := runtime.Caller(i); ok {
			if !strings.Contains(file, "gorm.io") {
				return file + ":" + strconv.Itoa(line)
			}
		}
	}
	return ""
}

// summarizeSQL returns the statement verb and target table, e.g. ("SELECT", "vaults").
func summarizeSQL(sql string) (op string, table string) {
	q := strings.ToUpper(strings.Join(strings.Fields(sql), " "))
	if q == "" {
		return "", ""
	}
	op, _, _ = strings.Cut(q, " ")
	s := q
	switch {
	case strings.HasPrefix(s, "UPDATE "):
		s = s[len("UPDATE "):]
	case strings.HasPrefix(s, "INSERT INTO "):
		s = s[len("INSERT INTO "):]
	case strings.HasPrefix(s, "DELETE FROM "):
		s = s[len("DELETE FROM "):]
	case strings.Contains(s, " FROM "):
		s = s[strings.Index(s, " FROM ")+6:]
	case strings.Contains(s, " INTO "):
		s = s[strings.Index(s, " INTO ")+6:]
	}
	if ws := strings.Fields(s); len(ws) > 0 {
		table = strings.Trim(ws[0], "`\"")
	}
	return op, strings.ToLower(table)
}

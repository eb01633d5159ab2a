// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package database holds the shared SQL building blocks used by every Postgres store.
package database

import sq "github.com/Masterminds/squirrel"

// QB is the query builder with PostgreSQL placeholder format.
var QB = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Recdash - Recommendation Dashboard for Tabular Snapshots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recdash

/*
Package catalog builds and publishes the set of tables the dashboard serves.

A Definition names a table and says where it comes from: a snapshot file, or
another catalog table, followed by reshaping steps. The Manager builds every
definition in dependency order into an immutable Catalog and publishes it with
an atomic pointer swap, so queries never lock and in-flight requests keep the
catalog they started with.

A table that fails to build is recorded with its error and skipped together
with every table depending on it. The rest of the catalog is still published.
A build in which no table loads is not published at all; the previous catalog
stays current.

# Usage

	defs, err := catalog.DefinitionsFromConfig(cfg)
	mgr, err := catalog.NewManager(defs, registry)
	if _, err := mgr.Reload(ctx); err != nil {
	    logging.Warn().Err(err).Msg("initial catalog load failed")
	}

	entry, err := mgr.Current().Entry("product-recommendations")
	page, err := entry.Evaluator().Query(`{Product Code} = "328"`, req)
*/
package catalog

package database

// SQL queries for SQLite metadata introspection.
const (
	queryListTables = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`

	queryDescribeTable = `
		SELECT p.cid, p.name, p.type, p."notnull", p.dflt_value, p.pk
		FROM sqlite_master AS m, pragma_table_info(m.name) AS p
		WHERE m.type = 'table'
		  AND m.name NOT LIKE 'sqlite\_%' ESCAPE '\'
		  AND m.name = ?
		ORDER BY p.cid`

	queryCountTables = `
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'`

	queryEngineVersion = `SELECT sqlite_version()`
)

package ankitest

// schema is the subset of the Anki 2.1 (schema 11) collection layout that
// kanjisheet reads, with the remaining columns kept so fixtures look like
// real collections.
const schema = `
-- The 'col' table holds a single row; models is the JSON map of note types.
CREATE TABLE IF NOT EXISTS col (
    id INTEGER PRIMARY KEY,
    crt INTEGER NOT NULL DEFAULT 0,
    mod INTEGER NOT NULL DEFAULT 0,
    scm INTEGER NOT NULL DEFAULT 0,
    ver INTEGER NOT NULL DEFAULT 11,
    dty INTEGER NOT NULL DEFAULT 0,
    usn INTEGER NOT NULL DEFAULT 0,
    ls INTEGER NOT NULL DEFAULT 0,
    conf TEXT NOT NULL DEFAULT '{}',
    models TEXT NOT NULL DEFAULT '{}',
    decks TEXT NOT NULL DEFAULT '{}',
    dconf TEXT NOT NULL DEFAULT '{}',
    tags TEXT NOT NULL DEFAULT '{}'
);

-- The 'notes' table stores note content; flds joins field values with 0x1f.
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY,
    guid TEXT NOT NULL DEFAULT '',
    mid INTEGER NOT NULL,
    mod INTEGER NOT NULL DEFAULT 0,
    usn INTEGER NOT NULL DEFAULT 0,
    tags TEXT NOT NULL DEFAULT '',
    flds TEXT NOT NULL,
    sfld TEXT NOT NULL DEFAULT '',
    csum INTEGER NOT NULL DEFAULT 0,
    flags INTEGER NOT NULL DEFAULT 0,
    data TEXT NOT NULL DEFAULT ''
);

-- The 'cards' table stores the schedulable cards generated from notes.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY,
    nid INTEGER NOT NULL,
    did INTEGER NOT NULL DEFAULT 1,
    ord INTEGER NOT NULL DEFAULT 0,
    mod INTEGER NOT NULL DEFAULT 0,
    usn INTEGER NOT NULL DEFAULT 0,
    type INTEGER NOT NULL DEFAULT 0,
    queue INTEGER NOT NULL DEFAULT 0,
    due INTEGER NOT NULL DEFAULT 0,
    ivl INTEGER NOT NULL DEFAULT 0,
    factor INTEGER NOT NULL DEFAULT 0,
    reps INTEGER NOT NULL DEFAULT 0,
    lapses INTEGER NOT NULL DEFAULT 0,
    left INTEGER NOT NULL DEFAULT 0,
    odue INTEGER NOT NULL DEFAULT 0,
    odid INTEGER NOT NULL DEFAULT 0,
    flags INTEGER NOT NULL DEFAULT 0,
    data TEXT NOT NULL DEFAULT ''
);

-- The 'revlog' table records reviews; id is the review time in milliseconds.
CREATE TABLE IF NOT EXISTS revlog (
    id INTEGER PRIMARY KEY,
    cid INTEGER NOT NULL,
    usn INTEGER NOT NULL DEFAULT 0,
    ease INTEGER NOT NULL, -- 1: Again, 2: Hard, 3: Good, 4: Easy
    ivl INTEGER NOT NULL DEFAULT 0,
    lastIvl INTEGER NOT NULL DEFAULT 0,
    factor INTEGER NOT NULL DEFAULT 0,
    time INTEGER NOT NULL DEFAULT 0,
    type INTEGER NOT NULL DEFAULT 1
);

INSERT OR IGNORE INTO col (id) VALUES (1);
`

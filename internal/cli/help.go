package cli

const rootHelp = `searchable filters SQL tables with a fuzzy, ctrl+p style search and keeps a
denormalized full-text index table in sync with them.

Every letter and digit of the search must appear in order in one of the
searched columns: "cp" matches "control panel". Rows whose column contains the
search text earlier rank first.

Settings are read from searchable.yaml (see --config); flags override them.

EXAMPLES
  searchable search posts "c-p"
  searchable search posts cap --column title --column author=users.name \
      --join users:users.id:posts.user_id
  searchable columns posts
  searchable index posts --title title --content body
  searchable fulltext "cap" --type posts`

package redis

import goredis "github.com/redis/go-redis/v9"

// Key layout:
//
//	thread:{id}               HASH  board text created_on bumped_on reported delete_password
//	thread:{id}:replies       LIST  reply ids in posting order
//	thread:{id}:reply:{rid}   HASH  text created_on reported delete_password
//	board:{board}:threads     ZSET  thread ids scored by bumped_on
//
// Times are unix milliseconds. Scripts derive reply and board keys from the
// thread key, so the store expects a single, non-clustered Redis.

const loadThreadLua = `
local function load_thread(id, n)
  local key = 'thread:' .. id
  local fields = redis.call('HGETALL', key)
  if #fields == 0 then return nil end
  local ids = {}
  if n < 0 then
    ids = redis.call('LRANGE', key .. ':replies', 0, -1)
  elseif n > 0 then
    ids = redis.call('LRANGE', key .. ':replies', -n, -1)
  end
  local replies = {}
  for _, rid in ipairs(ids) do
    table.insert(replies, {rid, redis.call('HGETALL', key .. ':reply:' .. rid)})
  end
  return {id, fields, replies}
end
`

// KEYS: thread, replies, board set
// ARGV: id board text created_on bumped_on reported delete_password
// followed by five values per reply: id text created_on reported delete_password
var createThreadScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return redis.error_reply('duplicate thread id')
end
redis.call('HSET', KEYS[1], 'board', ARGV[2], 'text', ARGV[3], 'created_on', ARGV[4],
  'bumped_on', ARGV[5], 'reported', ARGV[6], 'delete_password', ARGV[7])
redis.call('ZADD', KEYS[3], ARGV[5], ARGV[1])
for i = 8, #ARGV, 5 do
  redis.call('RPUSH', KEYS[2], ARGV[i])
  redis.call('HSET', KEYS[1] .. ':reply:' .. ARGV[i], 'text', ARGV[i+1], 'created_on', ARGV[i+2],
    'reported', ARGV[i+3], 'delete_password', ARGV[i+4])
end
return 1
`)

// ARGV: id, reply count (negative for all)
var getThreadScript = goredis.NewScript(loadThreadLua + `
local t = load_thread(ARGV[1], tonumber(ARGV[2]))
if not t then return false end
return t
`)

// KEYS: board set
// ARGV: limit (negative for no limit), reply count (negative for all)
var listThreadsScript = goredis.NewScript(loadThreadLua + `
local limit = tonumber(ARGV[1])
if limit == 0 then return {} end
local stop = -1
if limit > 0 then stop = limit - 1 end
local out = {}
for _, id in ipairs(redis.call('ZREVRANGE', KEYS[1], 0, stop)) do
  local t = load_thread(id, tonumber(ARGV[2]))
  if t then table.insert(out, t) end
end
return out
`)

// KEYS: thread, replies
// ARGV: id
var deleteThreadScript = goredis.NewScript(`
local board = redis.call('HGET', KEYS[1], 'board')
if not board then return 0 end
for _, rid in ipairs(redis.call('LRANGE', KEYS[2], 0, -1)) do
  redis.call('DEL', KEYS[1] .. ':reply:' .. rid)
end
redis.call('DEL', KEYS[1], KEYS[2])
redis.call('ZREM', 'board:' .. board .. ':threads', ARGV[1])
return 1
`)

// KEYS: thread, replies, reply
// ARGV: reply id, text, created_on, reported, delete_password, thread id
var appendReplyScript = goredis.NewScript(`
local board = redis.call('HGET', KEYS[1], 'board')
if not board then return 0 end
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[3], 'text', ARGV[2], 'created_on', ARGV[3], 'reported', ARGV[4], 'delete_password', ARGV[5])
redis.call('HSET', KEYS[1], 'bumped_on', ARGV[3])
redis.call('ZADD', 'board:' .. board .. ':threads', ARGV[3], ARGV[6])
return 1
`)

// setFieldScript sets one hash field of the last key, provided every key
// exists.
var setFieldScript = goredis.NewScript(`
for _, key in ipairs(KEYS) do
  if redis.call('EXISTS', key) == 0 then return 0 end
end
redis.call('HSET', KEYS[#KEYS], ARGV[1], ARGV[2])
return 1
`)

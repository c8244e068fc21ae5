package _const

// DefaultLimiter 同时执行回调的默认并发数
const DefaultLimiter = 16
